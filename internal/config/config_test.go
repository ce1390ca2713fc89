package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Sim.Dt != 0.001 {
		t.Errorf("expected dt 0.001, got %f", cfg.Sim.Dt)
	}
	if cfg.Vehicle.Mass != 150 {
		t.Errorf("expected mass 150, got %f", cfg.Vehicle.Mass)
	}
	if cfg.Tuning.RelaxDamping != 100 || cfg.Tuning.ForwardGain != 1 {
		t.Error("default tuning should use the stable relaxation damping and forward gain")
	}

	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	want := mustArchetype(t)
	if p.Mass != want.Mass || p.StaticLoadRear != want.StaticLoadRear || math.Abs(p.MaxSteer-want.MaxSteer) > 1e-12 {
		t.Errorf("Params() = %+v, want the sport archetype", p)
	}
}

func mustArchetype(t *testing.T) dynamo.Params {
	t.Helper()
	p, err := physics.Archetype("gokart-sport")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero dt", func(c *Config) { c.Sim.Dt = 0 }, dynamo.ErrInvalidTimestep},
		{"negative dt", func(c *Config) { c.Sim.Dt = -0.001 }, dynamo.ErrInvalidTimestep},
		{"zero mass", func(c *Config) { c.Vehicle.Mass = 0 }, dynamo.ErrParameterBounds},
		{"brake bias", func(c *Config) { c.Tuning.BrakeBias = 2 }, dynamo.ErrParameterBounds},
		{"zero grip", func(c *Config) { c.Sim.GripCoeff = 0 }, dynamo.ErrParameterBounds},
		{"zero duration", func(c *Config) { c.Sim.Duration = 0 }, dynamo.ErrParameterBounds},
		{"slip basis", func(c *Config) { c.Tuning.SlipRateBasis = "previous" }, dynamo.ErrUnknownComponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kart.yaml")
	data := `
vehicle:
  power: 20000
tuning:
  relax_damping: 100000
  slip_rate_basis: effective
sim:
  spawn_yaw_deg: -90
inputs:
  source: script
  script: ramp
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vehicle.Power != 20000 || cfg.Vehicle.Mass != 150 {
		t.Errorf("vehicle = %+v", cfg.Vehicle)
	}
	if cfg.Tuning.RelaxDamping != 100000 || cfg.Tuning.YawDamping != 500 {
		t.Errorf("tuning = %+v", cfg.Tuning)
	}
	if cfg.Sim.Dt != DefaultDt {
		t.Errorf("dt = %v, want default", cfg.Sim.Dt)
	}
	if s := cfg.Spawn(); math.Abs(s.Yaw-dynamo.Rad(-90)) > 1e-12 || s.GripCoeff != 2 {
		t.Errorf("spawn = %+v", s)
	}
	if _, err := cfg.Controller(); err != nil {
		t.Errorf("Controller: %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sim:\n  dt: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidTimestep) {
		t.Errorf("Load() = %v, want ErrInvalidTimestep", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("prototype")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Tuning != cfg.Tuning || loaded.Vehicle != cfg.Vehicle {
		t.Error("round trip changed the config")
	}
}

func TestModel(t *testing.T) {
	cfg := DefaultConfig()
	m, err := cfg.Model()
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if m.Dt() != cfg.Sim.Dt {
		t.Errorf("model dt = %v", m.Dt())
	}

	cfg.Sim.Integrator = "rk4"
	if _, err := cfg.Model(); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("Model() with unknown integrator = %v", err)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %q is nil", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
		if _, err := cfg.Controller(); err != nil {
			t.Errorf("preset %q controller: %v", name, err)
		}
	}

	if GetPreset("rally") != nil {
		t.Error("expected nil for unknown preset")
	}

	a, b := GetPreset("sport"), GetPreset("sport")
	a.Vehicle.Mass = 1
	if b.Vehicle.Mass != 150 {
		t.Error("presets must not share state")
	}

	straight := GetPreset("straight_line")
	if straight.Sim.SpawnYawDeg != -90 || straight.Sim.Duration != 8 || straight.Inputs.Drive != 1 {
		t.Errorf("straight_line = %+v", straight.Sim)
	}
	proto := GetPreset("prototype")
	if proto.Tuning.RelaxDamping != 100000 || proto.Tuning.ForwardGain != 2 {
		t.Errorf("prototype tuning = %+v", proto.Tuning)
	}
}

func TestFingerprint(t *testing.T) {
	a, b := DefaultConfig(), DefaultConfig()
	if a.Fingerprint() != b.Fingerprint() || len(a.Fingerprint()) != 16 {
		t.Fatalf("equal configs: %q vs %q", a.Fingerprint(), b.Fingerprint())
	}

	b.Display.FPS = 30
	b.Log.Level = "debug"
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("display and log settings should not change the fingerprint")
	}

	b.Sim.GripCoeff = 1.5
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("grip change should change the fingerprint")
	}

	c := DefaultConfig()
	c.Tuning.RelaxDamping = 100000
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("tuning change should change the fingerprint")
	}
}
