package integrators

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// SemiImplicitEuler updates velocities first and then moves the pose with the
// updated velocities.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(s *dynamo.State, dt float64) {
	advanceVelocity(s, dt)
	advancePose(s, dt)
}

// Euler is the explicit variant: the pose moves with the velocities from the
// start of the tick. Kept for comparison; it drifts at 1 kHz.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(s *dynamo.State, dt float64) {
	advancePose(s, dt)
	advanceVelocity(s, dt)
}

func advanceVelocity(s *dynamo.State, dt float64) {
	s.LongVel += dt * s.LongAccel
	s.LatVel += dt * s.LatAccel
	s.YawRate += dt * s.YawAccel
}

func advancePose(s *dynamo.State, dt float64) {
	sin, cos := math.Sincos(s.Yaw)
	s.X += dt * (s.LongVel*cos - s.LatVel*sin)
	s.Y += dt * (s.LongVel*sin + s.LatVel*cos)
	s.Yaw = dynamo.WrapAngle(s.Yaw + dt*s.YawRate)
}
