// Package automation runs scripted sequences of scenarios and randomised
// robustness studies.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/experiment"
	"github.com/san-kum/kartsim/internal/sim"
	"github.com/san-kum/kartsim/internal/storage"
)

// Batch is a YAML-described list of runs executed in order.
type Batch struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step names a scenario and overrides parts of it. Zero values keep the
// scenario's setting.
type Step struct {
	Scenario   string             `yaml:"scenario"`
	SaveAs     string             `yaml:"save_as"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Grip       float64            `yaml:"grip"`
	Integrator string             `yaml:"integrator"`
	Inputs     *inputOverride     `yaml:"inputs"`
	Tuning     map[string]float64 `yaml:"tuning"`
}

type inputOverride struct {
	Source   string  `yaml:"source"`
	Steering float64 `yaml:"steering"`
	Drive    float64 `yaml:"drive"`
	Script   string  `yaml:"script"`
}

type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
	Err    error // set when the run diverged
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	if len(b.Steps) == 0 {
		return nil, fmt.Errorf("batch %s has no steps", path)
	}
	return &b, nil
}

func (s Step) apply(cfg *config.Config) error {
	if s.Duration > 0 {
		cfg.Sim.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Sim.Dt = s.Dt
	}
	if s.Grip > 0 {
		cfg.Sim.GripCoeff = s.Grip
	}
	if s.Integrator != "" {
		cfg.Sim.Integrator = s.Integrator
	}
	if in := s.Inputs; in != nil {
		cfg.Inputs.Source = in.Source
		cfg.Inputs.Steering = in.Steering
		cfg.Inputs.Drive = in.Drive
		cfg.Inputs.Script = in.Script
		cfg.Inputs.Frames = nil
	}
	for name, v := range s.Tuning {
		if err := cfg.Tuning.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the steps in order. Each finished run is saved when st is not
// nil. A step that diverges is recorded and the batch goes on; any other
// failure stops it.
func (b *Batch) Run(ctx context.Context, reg *experiment.Registry, st storage.Store, logger *zap.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(b.Steps))

	for i, step := range b.Steps {
		name := step.SaveAs
		if name == "" {
			name = step.Scenario
		}
		logger.Info("batch step", zap.Int("step", i+1), zap.Int("of", len(b.Steps)), zap.String("name", name))

		cfg, err := reg.Config(step.Scenario)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := step.apply(cfg); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(name, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := exp.Run(ctx)
		out := StepResult{Name: name, Result: res}
		if err != nil {
			if !errors.Is(err, dynamo.ErrUnstable) {
				return results, fmt.Errorf("step %d run: %w", i+1, err)
			}
			logger.Warn("batch step diverged", zap.String("name", name), zap.Error(err))
			out.Err = err
		}

		if st != nil {
			id, err := st.Save(exp.Metadata(), res)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			out.RunID = id
		}
		results = append(results, out)
	}

	return results, nil
}
