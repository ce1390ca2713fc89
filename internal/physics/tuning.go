package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Tuning holds every stability and tire constant of the pipeline. None of
// these are physically derived; they are tuned to keep the model controllable
// at a 1 ms step.
type Tuning struct {
	SlipTolerance float64 `yaml:"slip_tolerance"`  // m/s
	SlipClampDeg  float64 `yaml:"slip_clamp_deg"`  // deg
	SlipRateBasis string  `yaml:"slip_rate_basis"` // raw | effective

	RelaxLengthFront float64 `yaml:"relax_length_front"` // m
	RelaxLengthRear  float64 `yaml:"relax_length_rear"`  // m
	RelaxTolerance   float64 `yaml:"relax_tolerance"`    // m/s
	RelaxDamping     float64 `yaml:"relax_damping"`

	DriveTolerance float64 `yaml:"drive_tolerance"` // m/s
	BrakeBias      float64 `yaml:"brake_bias"`      // front share
	ForwardGain    float64 `yaml:"forward_gain"`
	ReverseGain    float64 `yaml:"reverse_gain"`

	StiffnessFront float64 `yaml:"stiffness_front"`
	StiffnessRear  float64 `yaml:"stiffness_rear"`
	ShapeFront     float64 `yaml:"shape_front"`
	ShapeRear      float64 `yaml:"shape_rear"`
	AxleGripFront  float64 `yaml:"axle_grip_front"`
	AxleGripRear   float64 `yaml:"axle_grip_rear"`

	EllipseShape      float64 `yaml:"ellipse_shape"`
	SpeedScale        float64 `yaml:"speed_scale"` // m/s
	AlignFront        float64 `yaml:"align_front"`
	AlignRear         float64 `yaml:"align_rear"`
	AeroDrag          float64 `yaml:"aero_drag"`
	RollingResistance float64 `yaml:"rolling_resistance"`

	YawDamping float64 `yaml:"yaw_damping"`
	ScrubDrag  float64 `yaml:"scrub_drag"`
}

// DefaultTuning returns the constants of the shipped go-kart.
func DefaultTuning() Tuning {
	return Tuning{
		SlipTolerance: 3,
		SlipClampDeg:  25,
		SlipRateBasis: BasisRaw.String(),

		RelaxLengthFront: 0.1,
		RelaxLengthRear:  0.15,
		RelaxTolerance:   0.1,
		RelaxDamping:     100,

		DriveTolerance: 1,
		BrakeBias:      0.55,
		ForwardGain:    1,
		ReverseGain:    0.1,

		StiffnessFront: 5,
		StiffnessRear:  5,
		ShapeFront:     1.1,
		ShapeRear:      1.1,
		AxleGripFront:  1,
		AxleGripRear:   1,

		EllipseShape:      0.9,
		SpeedScale:        7,
		AlignFront:        50,
		AlignRear:         100,
		AeroDrag:          0.5,
		RollingResistance: 0.025,

		YawDamping: 500,
		ScrubDrag:  1500,
	}
}

// PrototypeTuning is the early prototype's variant: much stiffer relaxation
// damping and doubled forward drive. It is stable in a straight line but
// diverges under sustained steering at 1 kHz.
func PrototypeTuning() Tuning {
	t := DefaultTuning()
	t.RelaxDamping = 100000
	t.ForwardGain = 2
	t.YawDamping = 400
	return t
}

func (t Tuning) Validate() error {
	positive := map[string]float64{
		"slip_tolerance":     t.SlipTolerance,
		"relax_length_front": t.RelaxLengthFront,
		"relax_length_rear":  t.RelaxLengthRear,
		"relax_tolerance":    t.RelaxTolerance,
		"drive_tolerance":    t.DriveTolerance,
		"speed_scale":        t.SpeedScale,
	}
	for _, name := range sortedKeys(positive) {
		if v := positive[name]; !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrParameterBounds, name, v)
		}
	}
	if t.SlipClampDeg <= 0 || t.SlipClampDeg > 90 {
		return fmt.Errorf("%w: slip_clamp_deg must be in (0, 90], got %g", dynamo.ErrParameterBounds, t.SlipClampDeg)
	}
	if t.BrakeBias < 0 || t.BrakeBias > 1 {
		return fmt.Errorf("%w: brake_bias must be in [0, 1], got %g", dynamo.ErrParameterBounds, t.BrakeBias)
	}
	if t.EllipseShape < 0 || t.EllipseShape > 1 {
		return fmt.Errorf("%w: ellipse_shape must be in [0, 1], got %g", dynamo.ErrParameterBounds, t.EllipseShape)
	}
	if _, err := ParseSlipRateBasis(t.SlipRateBasis); err != nil {
		return err
	}
	return nil
}

// GetParams exposes the numeric constants by their YAML names.
func (t *Tuning) GetParams() map[string]float64 {
	out := make(map[string]float64)
	for name, ptr := range t.fields() {
		out[name] = *ptr
	}
	return out
}

func (t *Tuning) SetParam(name string, value float64) error {
	ptr, ok := t.fields()[name]
	if !ok {
		return fmt.Errorf("%w: tuning param %q", dynamo.ErrUnknownComponent, name)
	}
	*ptr = value
	return nil
}

// ParamNames lists the settable constants in sorted order.
func (t *Tuning) ParamNames() []string {
	return sortedKeys(t.GetParams())
}

func (t *Tuning) fields() map[string]*float64 {
	return map[string]*float64{
		"slip_tolerance":     &t.SlipTolerance,
		"slip_clamp_deg":     &t.SlipClampDeg,
		"relax_length_front": &t.RelaxLengthFront,
		"relax_length_rear":  &t.RelaxLengthRear,
		"relax_tolerance":    &t.RelaxTolerance,
		"relax_damping":      &t.RelaxDamping,
		"drive_tolerance":    &t.DriveTolerance,
		"brake_bias":         &t.BrakeBias,
		"forward_gain":       &t.ForwardGain,
		"reverse_gain":       &t.ReverseGain,
		"stiffness_front":    &t.StiffnessFront,
		"stiffness_rear":     &t.StiffnessRear,
		"shape_front":        &t.ShapeFront,
		"shape_rear":         &t.ShapeRear,
		"axle_grip_front":    &t.AxleGripFront,
		"axle_grip_rear":     &t.AxleGripRear,
		"ellipse_shape":      &t.EllipseShape,
		"speed_scale":        &t.SpeedScale,
		"align_front":        &t.AlignFront,
		"align_rear":         &t.AlignRear,
		"aero_drag":          &t.AeroDrag,
		"rolling_resistance": &t.RollingResistance,
		"yaw_damping":        &t.YawDamping,
		"scrub_drag":         &t.ScrubDrag,
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
