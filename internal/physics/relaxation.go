package physics

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// TyreRelaxation lags the effective slip angle behind the raw one. The time
// constant is the relaxation length over the floored forward speed.
type TyreRelaxation struct {
	LengthFront float64 // m
	LengthRear  float64 // m
	Tolerance   float64 // m/s
	Damping     float64 // 1/s
}

func NewTyreRelaxation(t Tuning) *TyreRelaxation {
	return &TyreRelaxation{
		LengthFront: t.RelaxLengthFront,
		LengthRear:  t.RelaxLengthRear,
		Tolerance:   t.RelaxTolerance,
		Damping:     t.RelaxDamping,
	}
}

func (r *TyreRelaxation) Relax(s *dynamo.State, dt float64) {
	speed := math.Max(math.Abs(s.LongVel), r.Tolerance)
	s.SlipEffFront = r.relax(s.SlipEffFront, s.SlipFront, r.LengthFront/speed, dt)
	s.SlipEffRear = r.relax(s.SlipEffRear, s.SlipRear, r.LengthRear/speed, dt)
}

func (r *TyreRelaxation) relax(eff, raw, tau, dt float64) float64 {
	return eff + dt*((raw-eff)/tau-r.Damping*eff)
}
