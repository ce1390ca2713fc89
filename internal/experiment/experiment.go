// Package experiment binds a configuration to a ready-to-run simulator.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/metrics"
	"github.com/san-kum/kartsim/internal/physics"
	"github.com/san-kum/kartsim/internal/sim"
	"github.com/san-kum/kartsim/internal/storage"
)

type Experiment struct {
	name      string
	cfg       *config.Config
	model     *physics.Model
	simulator *sim.Simulator
}

// New validates cfg and wires model, input source and the standard metrics.
// The experiment keeps its own copy of cfg.
func New(name string, cfg *config.Config) (*Experiment, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("experiment %s: %w", name, err)
	}

	model, err := cfg.Model()
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", name, err)
	}
	controller, err := cfg.Controller()
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", name, err)
	}

	simulator := sim.New(model, controller)
	for _, m := range metrics.Standard(model.Params(), cfg.Spawn()) {
		simulator.AddMetric(m)
	}

	return &Experiment{name: name, cfg: cfg, model: model, simulator: simulator}, nil
}

func (e *Experiment) Name() string {
	return e.name
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

func (e *Experiment) Model() *physics.Model {
	return e.model
}

// Simulator is exposed so callers can attach observers before Run.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.cfg.Spawn(), e.cfg.RunConfig())
}

// Job packages the experiment for sim.Sweep.
func (e *Experiment) Job() sim.Job {
	return sim.Job{
		Name:    e.name,
		Sim:     e.simulator,
		Initial: e.cfg.Spawn(),
		Config:  e.cfg.RunConfig(),
	}
}

// Metadata describes a finished run for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	source := e.cfg.Inputs.Source
	if source == "script" && e.cfg.Inputs.Script != "" {
		source += ":" + e.cfg.Inputs.Script
	}
	return storage.RunMetadata{
		Name:       e.name,
		Dt:         e.model.Dt(),
		Duration:   e.cfg.Sim.Duration,
		Integrator: e.cfg.Sim.Integrator,
		Source:     source,
		GripCoeff:  e.cfg.Sim.GripCoeff,
		ConfigHash: e.cfg.Fingerprint(),
	}
}

// Spawn is the initial state of every run.
func (e *Experiment) Spawn() dynamo.State {
	return e.cfg.Spawn()
}
