package physics

import (
	"fmt"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/integrators"
)

// Stages is the fixed per-tick pipeline. Every stage must be set.
type Stages struct {
	Slip       dynamo.SlipModel
	Relaxation dynamo.RelaxationModel
	Drive      dynamo.DriveModel
	Lateral    dynamo.LateralForceModel
	Limiter    dynamo.ForceLimiter
	Accel      dynamo.AccelerationModel
	Integrator dynamo.Integrator
}

// DefaultStages builds the rear-wheel-drive go-kart pipeline from t using the
// semi-implicit integrator.
func DefaultStages(t Tuning) (Stages, error) {
	return BuildStages(t, "")
}

// BuildStages is DefaultStages with a named integrator.
func BuildStages(t Tuning, integrator string) (Stages, error) {
	if err := t.Validate(); err != nil {
		return Stages{}, err
	}
	slip, err := NewSlipAngleLinear(t)
	if err != nil {
		return Stages{}, err
	}
	integ, err := integrators.New(integrator)
	if err != nil {
		return Stages{}, err
	}
	return Stages{
		Slip:       slip,
		Relaxation: NewTyreRelaxation(t),
		Drive:      NewRearWheelDrive(t),
		Lateral:    NewPacejkaSimple(t),
		Limiter:    NewFrictionLimiter(t),
		Accel:      NewLocalDynamic(t),
		Integrator: integ,
	}, nil
}

func (st Stages) missing() string {
	switch {
	case st.Slip == nil:
		return "slip"
	case st.Relaxation == nil:
		return "relaxation"
	case st.Drive == nil:
		return "drive"
	case st.Lateral == nil:
		return "lateral force"
	case st.Limiter == nil:
		return "force limiter"
	case st.Accel == nil:
		return "acceleration"
	case st.Integrator == nil:
		return "integrator"
	}
	return ""
}

// Model is the Ackermann bicycle model. It owns no state: the caller passes
// the vehicle state to Step and is its only writer.
type Model struct {
	params dynamo.Params
	stages Stages
	dt     float64
}

// NewModel checks the pipeline and the fixed timestep. p must come from
// dynamo.NewParams.
func NewModel(p dynamo.Params, stages Stages, dt float64) (*Model, error) {
	if err := dynamo.ValidateTimestep(dt); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !(p.StaticLoadFront > 0) || !(p.StaticLoadRear > 0) {
		return nil, fmt.Errorf("%w: static loads not derived, build params with dynamo.NewParams", dynamo.ErrParameterBounds)
	}
	if name := stages.missing(); name != "" {
		return nil, fmt.Errorf("%w: missing %s stage", dynamo.ErrUnknownComponent, name)
	}
	return &Model{params: p, stages: stages, dt: dt}, nil
}

func (m *Model) Dt() float64 {
	return m.dt
}

func (m *Model) Params() dynamo.Params {
	return m.params
}

// SteerAngle converts a normalized steering input to the road-wheel angle.
func (m *Model) SteerAngle(steering float64) float64 {
	return m.params.MaxSteer * dynamo.Input{Steering: steering}.Clamp().Steering
}

// Step advances s by one tick. Inputs are clamped to [-1, 1].
func (m *Model) Step(s *dynamo.State, in dynamo.Input) {
	in = in.Clamp()
	p := &m.params
	delta := p.MaxSteer * in.Steering

	m.stages.Slip.Slip(s, p, delta, m.dt)
	m.stages.Relaxation.Relax(s, m.dt)
	m.stages.Drive.Drive(s, p, in.Drive)
	m.stages.Lateral.LateralForces(s, p)
	m.stages.Limiter.Limit(s, p, delta)
	m.stages.Accel.Accelerations(s, p)
	m.stages.Integrator.Step(s, m.dt)
}
