package sim

import (
	"context"
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Simulator runs a model headless, as fast as possible, on the caller's
// goroutine. Runs are deterministic for a given model, source and initial
// state.
type Simulator struct {
	model      Model
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(model Model, controller dynamo.Controller) *Simulator {
	return &Simulator{
		model:      model,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Ticks is the number of fixed steps covering duration.
func Ticks(duration, dt float64) int {
	return int(math.Round(duration / dt))
}

// Run steps from x0 for cfg.Duration. With ValidateState set, a state with
// NaN or Inf ends the run with a SimulationError wrapping ErrUnstable; the
// partial result is returned alongside it.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dt := s.model.Dt()
	steps := Ticks(cfg.Duration, dt)
	every := cfg.sampleEvery()
	result := &Result{
		States:  make([]dynamo.State, 0, steps/every+2),
		Inputs:  make([]dynamo.Input, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Dt:      dt,
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0
	result.States = append(result.States, x)
	result.Inputs = append(result.Inputs, dynamo.Input{})
	result.Times = append(result.Times, 0)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		t := float64(i) * dt
		u := s.controller.Compute(&x, t).Clamp()
		s.model.Step(&x, u)
		t = float64(i+1) * dt
		result.StepsTaken++

		if cfg.ValidateState && !x.IsValid() {
			s.collect(result)
			return result, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: dynamo.ErrUnstable}
		}

		for _, m := range s.metrics {
			m.Observe(&x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(&x, u, t)
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.States = append(result.States, x)
			result.Inputs = append(result.Inputs, u)
			result.Times = append(result.Times, t)
		}
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback steps until the callback returns false, the duration is
// reached or ctx is done. The callback sees every tick.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg Config, callback func(dynamo.State, dynamo.Input, float64) bool) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	dt := s.model.Dt()
	steps := Ticks(cfg.Duration, dt)
	x := x0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * dt
		u := s.controller.Compute(&x, t).Clamp()
		s.model.Step(&x, u)

		if cfg.ValidateState && !x.IsValid() {
			return &dynamo.SimulationError{Step: i, Time: t + dt, State: x, Wrapped: dynamo.ErrUnstable}
		}
		if !callback(x, u, t+dt) {
			return nil
		}
	}

	return nil
}
