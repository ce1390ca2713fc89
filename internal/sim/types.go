package sim

import (
	"fmt"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Model advances a vehicle state by one fixed tick.
type Model interface {
	Step(s *dynamo.State, in dynamo.Input)
	Dt() float64
}

type Config struct {
	Duration      float64 // s
	SampleEvery   int     // record every n-th tick, 0 or 1 records all
	ValidateState bool
}

func (c Config) validate() error {
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", c.SampleEvery)
	}
	return nil
}

func (c Config) sampleEvery() int {
	if c.SampleEvery < 1 {
		return 1
	}
	return c.SampleEvery
}

// Result holds the sampled trajectory of one run. States[0] is the initial
// state; Inputs[i] is the input applied on the tick that produced States[i].
type Result struct {
	States     []dynamo.State
	Inputs     []dynamo.Input
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Dt         float64
}

// Final returns the last recorded state.
func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return dynamo.State{}
	}
	return r.States[len(r.States)-1]
}
