package metrics

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

type TopSpeed struct {
	max float64
}

func NewTopSpeed() *TopSpeed { return &TopSpeed{} }

func (m *TopSpeed) Name() string { return "top_speed" }

func (m *TopSpeed) Observe(s *dynamo.State, in dynamo.Input, t float64) {
	m.max = math.Max(m.max, s.Speed())
}

func (m *TopSpeed) Value() float64 { return m.max }
func (m *TopSpeed) Reset()         { m.max = 0 }

// Distance is the travelled path length.
type Distance struct {
	total   float64
	prevX   float64
	prevY   float64
	hasPrev bool
}

func NewDistance() *Distance { return &Distance{} }

func (m *Distance) Name() string { return "distance" }

func (m *Distance) Observe(s *dynamo.State, in dynamo.Input, t float64) {
	if m.hasPrev {
		m.total += math.Hypot(s.X-m.prevX, s.Y-m.prevY)
	}
	m.prevX, m.prevY, m.hasPrev = s.X, s.Y, true
}

func (m *Distance) Value() float64 { return m.total }

func (m *Distance) Reset() {
	*m = Distance{}
}

// MaxSlip is the largest raw slip angle on either axle, in degrees.
type MaxSlip struct {
	max float64
}

func NewMaxSlip() *MaxSlip { return &MaxSlip{} }

func (m *MaxSlip) Name() string { return "max_slip_deg" }

func (m *MaxSlip) Observe(s *dynamo.State, in dynamo.Input, t float64) {
	m.max = math.Max(m.max, math.Max(math.Abs(s.SlipFront), math.Abs(s.SlipRear)))
}

func (m *MaxSlip) Value() float64 { return dynamo.Deg(m.max) }
func (m *MaxSlip) Reset()         { m.max = 0 }

// LateralDeviation is the largest distance from the line through the spawn
// point along the spawn heading.
type LateralDeviation struct {
	x0, y0   float64
	sin, cos float64
	max      float64
}

func NewLateralDeviation(spawn dynamo.State) *LateralDeviation {
	sin, cos := math.Sincos(spawn.Yaw)
	return &LateralDeviation{x0: spawn.X, y0: spawn.Y, sin: sin, cos: cos}
}

func (m *LateralDeviation) Name() string { return "lateral_deviation" }

func (m *LateralDeviation) Observe(s *dynamo.State, in dynamo.Input, t float64) {
	d := math.Abs(-(s.X-m.x0)*m.sin + (s.Y-m.y0)*m.cos)
	m.max = math.Max(m.max, d)
}

func (m *LateralDeviation) Value() float64 { return m.max }
func (m *LateralDeviation) Reset()         { m.max = 0 }

// Standard returns the metrics recorded for every run.
func Standard(p dynamo.Params, spawn dynamo.State) []dynamo.Metric {
	return []dynamo.Metric{
		NewTopSpeed(),
		NewDistance(),
		NewMaxSlip(),
		NewLateralDeviation(spawn),
		NewStability(100, 20),
		NewEnergy(p),
		NewSteeringActivity(),
	}
}
