package control

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Manual holds inputs written by a UI goroutine and read by the simulation
// goroutine. Each channel is published atomically; a reader may observe a
// new steering value with the previous drive value, never a torn float.
type Manual struct {
	steering atomic.Uint64
	drive    atomic.Uint64
}

func NewManual() *Manual {
	return &Manual{}
}

// Set publishes a new input, clamped to [-1, 1].
func (m *Manual) Set(in dynamo.Input) {
	in = in.Clamp()
	m.steering.Store(math.Float64bits(in.Steering))
	m.drive.Store(math.Float64bits(in.Drive))
}

func (m *Manual) SetSteering(v float64) {
	m.steering.Store(math.Float64bits(dynamo.Input{Steering: v}.Clamp().Steering))
}

func (m *Manual) SetDrive(v float64) {
	m.drive.Store(math.Float64bits(dynamo.Input{Drive: v}.Clamp().Drive))
}

// Get returns the latest published input.
func (m *Manual) Get() dynamo.Input {
	return dynamo.Input{
		Steering: math.Float64frombits(m.steering.Load()),
		Drive:    math.Float64frombits(m.drive.Load()),
	}
}

func (m *Manual) Compute(s *dynamo.State, t float64) dynamo.Input {
	return m.Get()
}
