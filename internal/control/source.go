package control

import (
	"fmt"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Spec selects and parameterizes an input source.
type Spec struct {
	Source   string     `yaml:"source"` // none | constant | manual | script | cruise
	Steering float64    `yaml:"steering"`
	Drive    float64    `yaml:"drive"`
	Script   string     `yaml:"script,omitempty"` // builtin name or YAML path
	Frames   []Keyframe `yaml:"frames,omitempty"`
	Cruise   CruiseSpec `yaml:"cruise"`
}

type CruiseSpec struct {
	Target float64 `yaml:"target"` // m/s
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
}

// New builds the source described by spec. Cruise steers with the constant
// steering value.
func New(spec Spec) (dynamo.Controller, error) {
	switch spec.Source {
	case "", "none":
		return NewNone(), nil
	case "constant":
		return NewConstant(spec.Steering, spec.Drive), nil
	case "manual":
		m := NewManual()
		m.Set(dynamo.Input{Steering: spec.Steering, Drive: spec.Drive})
		return m, nil
	case "script":
		if len(spec.Frames) > 0 {
			return NewScript(spec.Frames), nil
		}
		if spec.Script == "" {
			return nil, fmt.Errorf("%w: script source needs frames or a script name", dynamo.ErrUnknownComponent)
		}
		if sc, err := BuiltinScript(spec.Script); err == nil {
			return sc, nil
		}
		return LoadScript(spec.Script)
	case "cruise":
		c := spec.Cruise
		return NewCruise(NewPID(c.Kp, c.Ki, c.Kd, c.Target), NewConstant(spec.Steering, 0)), nil
	default:
		return nil, fmt.Errorf("%w: input source %q", dynamo.ErrUnknownComponent, spec.Source)
	}
}

func ListSources() []string {
	return []string{"constant", "cruise", "manual", "none", "script"}
}
