package physics

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// PacejkaSimple is a reduced magic-formula tire: stiffness B and shape C per
// axle, scaled by the axle grip factor, the state's grip coefficient and the
// static axle load.
type PacejkaSimple struct {
	StiffnessFront, StiffnessRear float64
	ShapeFront, ShapeRear         float64
	GripFront, GripRear           float64
}

func NewPacejkaSimple(t Tuning) *PacejkaSimple {
	return &PacejkaSimple{
		StiffnessFront: t.StiffnessFront,
		StiffnessRear:  t.StiffnessRear,
		ShapeFront:     t.ShapeFront,
		ShapeRear:      t.ShapeRear,
		GripFront:      t.AxleGripFront,
		GripRear:       t.AxleGripRear,
	}
}

func (m *PacejkaSimple) LateralForces(s *dynamo.State, p *dynamo.Params) {
	s.LatForceFront = s.GripCoeff * m.GripFront * p.StaticLoadFront *
		math.Sin(m.ShapeFront*math.Atan(m.StiffnessFront*s.SlipEffFront))
	s.LatForceRear = s.GripCoeff * m.GripRear * p.StaticLoadRear *
		math.Sin(m.ShapeRear*math.Atan(m.StiffnessRear*s.SlipEffRear))
}
