package physics

import "github.com/san-kum/kartsim/internal/dynamo"

// LocalDynamic computes local-frame accelerations. YawDamping and ScrubDrag
// are stability aids, not physical terms.
type LocalDynamic struct {
	YawDamping float64
	ScrubDrag  float64
}

func NewLocalDynamic(t Tuning) *LocalDynamic {
	return &LocalDynamic{YawDamping: t.YawDamping, ScrubDrag: t.ScrubDrag}
}

func (l *LocalDynamic) Accelerations(s *dynamo.State, p *dynamo.Params) {
	s.LongAccel = (s.LongForceFront+s.LongForceRear)/p.Mass + s.YawRate*s.LatVel
	s.LatAccel = (s.LatForceFront+s.LatForceRear-l.ScrubDrag*s.LatVel)/p.Mass - s.YawRate*s.LongVel
	s.YawAccel = (p.DistFront*s.LatForceFront - p.DistRear*s.LatForceRear - l.YawDamping*s.YawRate) / p.YawResistance
}
