package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kartsim/internal/control"
	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/physics"
	"github.com/san-kum/kartsim/internal/sim"
)

const (
	DefaultDt         = 0.001
	DefaultDuration   = 10.0
	DefaultWorldScale = 30.0
	DefaultFPS        = 60
	DefaultCruise     = 15.0
)

type Config struct {
	Vehicle VehicleConfig  `yaml:"vehicle"`
	Tuning  physics.Tuning `yaml:"tuning"`
	Sim     SimConfig      `yaml:"sim"`
	Inputs  control.Spec   `yaml:"inputs"`
	Display DisplayConfig  `yaml:"display"`
	Log     LogConfig      `yaml:"log"`
}

// VehicleConfig mirrors dynamo.Params with the steering limit in degrees.
type VehicleConfig struct {
	Mass                    float64 `yaml:"mass"`
	DistFront               float64 `yaml:"dist_front"`
	DistRear                float64 `yaml:"dist_rear"`
	HeightCoM               float64 `yaml:"height_com"`
	YawResistance           float64 `yaml:"yaw_resistance"`
	MaxSteerDeg             float64 `yaml:"max_steer_deg"`
	CorneringStiffnessFront float64 `yaml:"cornering_stiffness_front"`
	CorneringStiffnessRear  float64 `yaml:"cornering_stiffness_rear"`
	Power                   float64 `yaml:"power"`
	EngineForce             float64 `yaml:"engine_force"`
	BrakeForce              float64 `yaml:"brake_force"`
}

type SimConfig struct {
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	SpawnX        float64 `yaml:"spawn_x"`
	SpawnY        float64 `yaml:"spawn_y"`
	SpawnYawDeg   float64 `yaml:"spawn_yaw_deg"`
	GripCoeff     float64 `yaml:"grip_coeff"`
	Integrator    string  `yaml:"integrator"`
	SampleEvery   int     `yaml:"sample_every"`
	ValidateState bool    `yaml:"validate_state"`
}

type DisplayConfig struct {
	WorldScale float64 `yaml:"world_scale"` // screen units per metre
	FPS        int     `yaml:"fps"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func VehicleFromParams(p dynamo.Params) VehicleConfig {
	return VehicleConfig{
		Mass:                    p.Mass,
		DistFront:               p.DistFront,
		DistRear:                p.DistRear,
		HeightCoM:               p.HeightCoM,
		YawResistance:           p.YawResistance,
		MaxSteerDeg:             dynamo.Deg(p.MaxSteer),
		CorneringStiffnessFront: p.CorneringStiffnessFront,
		CorneringStiffnessRear:  p.CorneringStiffnessRear,
		Power:                   p.Power,
		EngineForce:             p.EngineForce,
		BrakeForce:              p.BrakeForce,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Vehicle: VehicleFromParams(physics.GoKartSport()),
		Tuning:  physics.DefaultTuning(),
		Sim: SimConfig{
			Dt:            DefaultDt,
			Duration:      DefaultDuration,
			GripCoeff:     dynamo.DefaultGripCoeff,
			Integrator:    "semi-implicit",
			SampleEvery:   10,
			ValidateState: true,
		},
		Inputs: control.Spec{
			Source: "constant",
			Drive:  1,
			Cruise: control.CruiseSpec{Target: DefaultCruise, Kp: 0.5, Ki: 0.1},
		},
		Display: DisplayConfig{WorldScale: DefaultWorldScale, FPS: DefaultFPS},
		Log:     LogConfig{Level: "info"},
	}
}

// Load overlays the YAML file at path onto the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := dynamo.ValidateTimestep(c.Sim.Dt); err != nil {
		return err
	}
	if !(c.Sim.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, c.Sim.Duration)
	}
	if !(c.Sim.GripCoeff > 0) {
		return fmt.Errorf("%w: grip_coeff must be positive, got %g", dynamo.ErrParameterBounds, c.Sim.GripCoeff)
	}
	if c.Sim.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative", dynamo.ErrParameterBounds)
	}
	if !(c.Display.WorldScale > 0) {
		return fmt.Errorf("%w: world_scale must be positive", dynamo.ErrParameterBounds)
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	return c.Tuning.Validate()
}

// Params derives the vehicle constants, static loads included.
func (c *Config) Params() (dynamo.Params, error) {
	v := c.Vehicle
	return dynamo.NewParams(dynamo.Params{
		Mass:                    v.Mass,
		DistFront:               v.DistFront,
		DistRear:                v.DistRear,
		HeightCoM:               v.HeightCoM,
		YawResistance:           v.YawResistance,
		MaxSteer:                dynamo.Rad(v.MaxSteerDeg),
		CorneringStiffnessFront: v.CorneringStiffnessFront,
		CorneringStiffnessRear:  v.CorneringStiffnessRear,
		Power:                   v.Power,
		EngineForce:             v.EngineForce,
		BrakeForce:              v.BrakeForce,
	})
}

// Model builds the dynamics pipeline described by the config.
func (c *Config) Model() (*physics.Model, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	stages, err := physics.BuildStages(c.Tuning, c.Sim.Integrator)
	if err != nil {
		return nil, err
	}
	return physics.NewModel(p, stages, c.Sim.Dt)
}

// Spawn is a fresh vehicle at the configured pose and grip.
func (c *Config) Spawn() dynamo.State {
	s := dynamo.NewState(c.Sim.SpawnX, c.Sim.SpawnY, dynamo.Rad(c.Sim.SpawnYawDeg))
	s.GripCoeff = c.Sim.GripCoeff
	return s
}

func (c *Config) Controller() (dynamo.Controller, error) {
	return control.New(c.Inputs)
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		Duration:      c.Sim.Duration,
		SampleEvery:   c.Sim.SampleEvery,
		ValidateState: c.Sim.ValidateState,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Inputs.Frames = append([]control.Keyframe(nil), c.Inputs.Frames...)
	return &out
}
