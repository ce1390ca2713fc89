package config

import (
	"sort"

	"github.com/san-kum/kartsim/internal/physics"
)

var Presets = map[string]func() *Config{
	"sport": DefaultConfig,
	"prototype": func() *Config {
		cfg := DefaultConfig()
		cfg.Vehicle = VehicleFromParams(physics.GoKartPrototype())
		cfg.Tuning = physics.PrototypeTuning()
		return cfg
	},
	"low_grip": func() *Config {
		cfg := DefaultConfig()
		cfg.Sim.GripCoeff = 1.0
		return cfg
	},
	"straight_line": func() *Config {
		cfg := DefaultConfig()
		cfg.Sim.SpawnYawDeg = -90
		cfg.Sim.Duration = 8
		cfg.Inputs.Source = "constant"
		cfg.Inputs.Steering = 0
		cfg.Inputs.Drive = 1
		return cfg
	},
	"slalom": func() *Config {
		cfg := DefaultConfig()
		cfg.Inputs.Source = "script"
		cfg.Inputs.Script = "slalom"
		return cfg
	},
	"cruise": func() *Config {
		cfg := DefaultConfig()
		cfg.Inputs.Source = "cruise"
		cfg.Inputs.Steering = 0.2
		cfg.Sim.Duration = 20
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
