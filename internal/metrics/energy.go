package metrics

import "github.com/san-kum/kartsim/internal/dynamo"

// Energy is the mean kinetic energy of the vehicle, translational plus yaw.
type Energy struct {
	name        string
	mass        float64
	inertia     float64
	samples     int
	totalEnergy float64
}

func NewEnergy(p dynamo.Params) *Energy {
	return &Energy{
		name:    "energy",
		mass:    p.Mass,
		inertia: p.YawResistance,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *dynamo.State, in dynamo.Input, t float64) {
	e.totalEnergy += KineticEnergy(s, e.mass, e.inertia)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

func KineticEnergy(s *dynamo.State, mass, inertia float64) float64 {
	v2 := s.LongVel*s.LongVel + s.LatVel*s.LatVel
	return 0.5*mass*v2 + 0.5*inertia*s.YawRate*s.YawRate
}
