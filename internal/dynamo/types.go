package dynamo

import (
	"fmt"
	"math"
)

// Gravity is the gravitational acceleration used for static axle loads, in m/s².
const Gravity = 9.81

// DefaultGripCoeff is the tire grip coefficient of a fresh State.
const DefaultGripCoeff = 2.0

// Params are the physical constants of a vehicle archetype. Build them with
// NewParams so the static axle loads are derived; treat the result as read-only.
type Params struct {
	Mass          float64 // kg
	DistFront     float64 // CoM to front axle, m
	DistRear      float64 // CoM to rear axle, m
	HeightCoM     float64 // m
	YawResistance float64 // resistance to yaw rotation, kg·m²
	MaxSteer      float64 // rad

	// Cornering stiffness is not read by PacejkaSimple. The fields stay so a
	// linear tire model can be swapped in without touching the data model.
	CorneringStiffnessFront float64 // N/rad
	CorneringStiffnessRear  float64 // N/rad

	Power       float64 // W
	EngineForce float64 // peak engine force, N
	BrakeForce  float64 // peak brake force, N

	StaticLoadFront float64 // N, derived
	StaticLoadRear  float64 // N, derived
}

// NewParams validates p and returns a copy with the static axle loads derived
// from the static weight distribution.
func NewParams(p Params) (Params, error) {
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	wb := p.Wheelbase()
	p.StaticLoadFront = Gravity * p.Mass * p.DistRear / wb
	p.StaticLoadRear = Gravity * p.Mass * p.DistFront / wb
	return p, nil
}

// Validate reports the first physical constant outside its valid range.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"mass", p.Mass},
		{"dist_front", p.DistFront},
		{"dist_rear", p.DistRear},
		{"yaw_resistance", p.YawResistance},
	}
	for _, c := range checks {
		if !(c.value > 0) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrParameterBounds, c.name, c.value)
		}
	}
	if p.HeightCoM < 0 {
		return fmt.Errorf("%w: height_com must not be negative, got %g", ErrParameterBounds, p.HeightCoM)
	}
	if p.MaxSteer < 0 || p.MaxSteer >= math.Pi/2 {
		return fmt.Errorf("%w: max_steer must be in [0, pi/2), got %g", ErrParameterBounds, p.MaxSteer)
	}
	if p.Power < 0 || p.EngineForce < 0 || p.BrakeForce < 0 {
		return fmt.Errorf("%w: power, engine and brake force must not be negative", ErrParameterBounds)
	}
	return nil
}

// Wheelbase is the distance between the axles.
func (p Params) Wheelbase() float64 { return p.DistFront + p.DistRear }

// State is the dynamic state of one vehicle. Velocities and accelerations are
// in the vehicle's local frame; X, Y and Yaw are global.
type State struct {
	X, Y float64 // CoM position, m
	Yaw  float64 // heading, rad, kept in (-pi, pi]

	LongVel float64 // m/s
	LatVel  float64 // m/s
	YawRate float64 // rad/s

	// Derived every tick and published for telemetry; not integrated state.
	LongAccel float64
	LatAccel  float64
	YawAccel  float64

	SlipFront     float64 // raw slip angle, rad
	SlipRear      float64
	SlipEffFront  float64 // relaxed slip angle, rad
	SlipEffRear   float64
	SlipRateFront float64 // rad/s
	SlipRateRear  float64

	LongForceFront float64 // N
	LongForceRear  float64
	LatForceFront  float64
	LatForceRear   float64

	GripCoeff float64
}

// NewState returns a vehicle at rest at the given spawn pose.
func NewState(x, y, yaw float64) State {
	return State{
		X:         x,
		Y:         y,
		Yaw:       WrapAngle(yaw),
		GripCoeff: DefaultGripCoeff,
	}
}

// IsValid reports whether every field is finite.
func (s State) IsValid() bool {
	for _, v := range s.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Speed is the magnitude of the planar velocity.
func (s State) Speed() float64 { return math.Hypot(s.LongVel, s.LatVel) }

// StateColumns names the entries of State.Vector in order.
var StateColumns = []string{
	"x", "y", "yaw",
	"long_vel", "lat_vel", "yaw_rate",
	"long_accel", "lat_accel", "yaw_accel",
	"slip_front", "slip_rear", "slip_eff_front", "slip_eff_rear",
	"slip_rate_front", "slip_rate_rear",
	"long_force_front", "long_force_rear", "lat_force_front", "lat_force_rear",
	"grip_coeff",
}

// Vector flattens the state for telemetry rows.
func (s State) Vector() []float64 {
	return []float64{
		s.X, s.Y, s.Yaw,
		s.LongVel, s.LatVel, s.YawRate,
		s.LongAccel, s.LatAccel, s.YawAccel,
		s.SlipFront, s.SlipRear, s.SlipEffFront, s.SlipEffRear,
		s.SlipRateFront, s.SlipRateRear,
		s.LongForceFront, s.LongForceRear, s.LatForceFront, s.LatForceRear,
		s.GripCoeff,
	}
}

// StateFromVector is the inverse of Vector. Missing trailing entries stay zero.
func StateFromVector(v []float64) State {
	var s State
	fields := []*float64{
		&s.X, &s.Y, &s.Yaw,
		&s.LongVel, &s.LatVel, &s.YawRate,
		&s.LongAccel, &s.LatAccel, &s.YawAccel,
		&s.SlipFront, &s.SlipRear, &s.SlipEffFront, &s.SlipEffRear,
		&s.SlipRateFront, &s.SlipRateRear,
		&s.LongForceFront, &s.LongForceRear, &s.LatForceFront, &s.LatForceRear,
		&s.GripCoeff,
	}
	for i := range fields {
		if i < len(v) {
			*fields[i] = v[i]
		}
	}
	return s
}

// Input is a normalized control command. Steering is scaled by MaxSteer,
// Drive is throttle when positive and brake/reverse when negative.
type Input struct {
	Steering float64
	Drive    float64
}

// Clamp limits both channels to [-1, 1]. NaN becomes 0.
func (in Input) Clamp() Input {
	return Input{Steering: clampUnit(in.Steering), Drive: clampUnit(in.Drive)}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// SlipModel computes raw slip angles and slip rates for steering angle delta.
type SlipModel interface {
	Slip(s *State, p *Params, delta, dt float64)
}

// RelaxationModel filters raw slip angles into effective slip angles.
type RelaxationModel interface {
	Relax(s *State, dt float64)
}

// DriveModel maps the drive command to raw longitudinal axle forces.
type DriveModel interface {
	Drive(s *State, p *Params, drive float64)
}

// LateralForceModel maps effective slip angles to lateral axle forces.
type LateralForceModel interface {
	LateralForces(s *State, p *Params)
}

// ForceLimiter caps and corrects the tick's axle forces and projects them
// into the body frame.
type ForceLimiter interface {
	Limit(s *State, p *Params, delta float64)
}

// AccelerationModel turns body-frame forces into local accelerations.
type AccelerationModel interface {
	Accelerations(s *State, p *Params)
}

// Integrator advances velocities and pose by dt using the tick's accelerations.
type Integrator interface {
	Step(s *State, dt float64)
}

// Controller produces the input for the tick starting at time t.
type Controller interface {
	Compute(s *State, t float64) Input
}

type Metric interface {
	Name() string
	Observe(s *State, in Input, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *State, in Input, t float64)
}
