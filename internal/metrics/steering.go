package metrics

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// SteeringActivity is the total steering travel per second of driving, in
// normalized steering units. A held wheel scores 0; a full lock-to-lock
// sweep every second scores 2.
type SteeringActivity struct {
	travel     float64
	last       float64
	start, end float64
	seen       bool
}

func NewSteeringActivity() *SteeringActivity { return &SteeringActivity{} }

func (m *SteeringActivity) Name() string { return "steering_activity" }

func (m *SteeringActivity) Observe(s *dynamo.State, in dynamo.Input, t float64) {
	if !m.seen {
		m.seen = true
		m.start = t
	} else {
		m.travel += math.Abs(in.Steering - m.last)
	}
	m.last = in.Steering
	m.end = t
}

func (m *SteeringActivity) Value() float64 {
	span := m.end - m.start
	if span <= 0 {
		return 0
	}
	return m.travel / span
}

func (m *SteeringActivity) Reset() { *m = SteeringActivity{} }
