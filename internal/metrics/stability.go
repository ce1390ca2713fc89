package metrics

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Stability is the fraction of ticks whose state is finite and whose
// velocities stay inside the thresholds.
type Stability struct {
	name       string
	maxSpeed   float64 // m/s
	maxYawRate float64 // rad/s
	violations int
	samples    int
}

func NewStability(maxSpeed, maxYawRate float64) *Stability {
	return &Stability{
		name:       "stability",
		maxSpeed:   maxSpeed,
		maxYawRate: maxYawRate,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x *dynamo.State, in dynamo.Input, t float64) {
	s.samples++
	if !x.IsValid() ||
		math.Abs(x.LongVel) > s.maxSpeed ||
		math.Abs(x.LatVel) > s.maxSpeed ||
		math.Abs(x.YawRate) > s.maxYawRate {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
