package physics

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// FrictionLimiter applies load transfer, the friction ellipse, lateral
// alignment with low-speed fade, and longitudinal drag to the tick's axle
// forces, then projects the front axle into the body frame.
type FrictionLimiter struct {
	EllipseShape      float64
	SpeedScale        float64 // m/s
	AlignFront        float64
	AlignRear         float64
	AeroDrag          float64
	RollingResistance float64
}

func NewFrictionLimiter(t Tuning) *FrictionLimiter {
	return &FrictionLimiter{
		EllipseShape:      t.EllipseShape,
		SpeedScale:        t.SpeedScale,
		AlignFront:        t.AlignFront,
		AlignRear:         t.AlignRear,
		AeroDrag:          t.AeroDrag,
		RollingResistance: t.RollingResistance,
	}
}

func (f *FrictionLimiter) Limit(s *dynamo.State, p *dynamo.Params, delta float64) {
	front, rear := f.LoadTransfer(s, p)
	f.ForceEllipse(s, front, rear)
	f.LateralFriction(s)
	f.LongitudinalFriction(s, front, rear)
	ProjectToBody(s, delta)
}

// LoadTransfer returns the dynamic axle loads. It reads the longitudinal
// acceleration of the previous tick; loads never drop below zero.
func (f *FrictionLimiter) LoadTransfer(s *dynamo.State, p *dynamo.Params) (front, rear float64) {
	transfer := p.Mass * s.LongAccel * p.HeightCoM / p.Wheelbase()
	return math.Max(0, p.StaticLoadFront-transfer), math.Max(0, p.StaticLoadRear+transfer)
}

func (f *FrictionLimiter) ForceEllipse(s *dynamo.State, loadFront, loadRear float64) {
	s.LongForceFront, s.LatForceFront = f.ellipse(s.LongForceFront, s.LatForceFront, s.GripCoeff*loadFront)
	s.LongForceRear, s.LatForceRear = f.ellipse(s.LongForceRear, s.LatForceRear, s.GripCoeff*loadRear)
}

func (f *FrictionLimiter) ellipse(fx, fy, limit float64) (float64, float64) {
	n := math.Hypot(fx, fy)
	if n <= limit {
		return fx, fy
	}
	k := limit / n
	return fx * k, fy * k * f.EllipseShape
}

// LateralFriction damps lateral force against the slip-angle rate and fades
// it to zero at standstill.
func (f *FrictionLimiter) LateralFriction(s *dynamo.State) {
	fade := math.Tanh(math.Abs(s.LongVel) / f.SpeedScale)
	s.LatForceFront = (s.LatForceFront - f.AlignFront*s.SlipRateFront) * fade
	s.LatForceRear = (s.LatForceRear - f.AlignRear*s.SlipRateRear) * fade
}

// LongitudinalFriction applies aero drag, split evenly between the axles, and
// load-proportional rolling resistance against the direction of travel.
func (f *FrictionLimiter) LongitudinalFriction(s *dynamo.State, loadFront, loadRear float64) {
	dir := dynamo.Sign(s.LongVel)
	aero := 0.5 * f.AeroDrag * s.LongVel * s.LongVel
	s.LongForceFront -= dir * (aero + f.RollingResistance*loadFront)
	s.LongForceRear -= dir * (aero + f.RollingResistance*loadRear)
}

// ProjectToBody rotates the front axle forces from the wheel frame by the
// steering angle. The longitudinal loss opposes travel so mirrored steering
// gives mirrored forces.
func ProjectToBody(s *dynamo.State, delta float64) {
	s.LongForceFront -= dynamo.Sign(s.LongVel) * math.Abs(s.LatForceFront*math.Sin(delta))
	s.LatForceFront *= math.Cos(delta)
}
