package physics

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// RearWheelDrive drives the rear axle and brakes both.
//
// A drive command opposing the current motion brakes with BrakeBias of the
// peak brake force on the front axle and the rest on the rear. Otherwise the
// rear axle receives the power-limited engine force, scaled by ReverseGain
// when reversing.
type RearWheelDrive struct {
	Tolerance   float64 // m/s
	BrakeBias   float64
	ForwardGain float64
	ReverseGain float64
}

func NewRearWheelDrive(t Tuning) *RearWheelDrive {
	return &RearWheelDrive{
		Tolerance:   t.DriveTolerance,
		BrakeBias:   t.BrakeBias,
		ForwardGain: t.ForwardGain,
		ReverseGain: t.ReverseGain,
	}
}

func (d *RearWheelDrive) Drive(s *dynamo.State, p *dynamo.Params, f float64) {
	vx := s.LongVel
	switch {
	case f == 0:
		s.LongForceFront, s.LongForceRear = 0, 0
	case f*vx < 0:
		s.LongForceFront = f * d.BrakeBias * p.BrakeForce
		s.LongForceRear = f * (1 - d.BrakeBias) * p.BrakeForce
	case f < 0:
		s.LongForceFront = 0
		s.LongForceRear = f * d.ReverseGain * d.traction(p, vx)
	default:
		s.LongForceFront = 0
		s.LongForceRear = f * d.ForwardGain * d.traction(p, vx)
	}
}

// traction is the engine force available at speed vx: capped by the peak
// engine force at low speed and by power over speed above it.
func (d *RearWheelDrive) traction(p *dynamo.Params, vx float64) float64 {
	return math.Min(p.EngineForce, p.Power/math.Max(math.Abs(vx), d.Tolerance))
}
