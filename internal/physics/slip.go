package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// SlipRateBasis selects the reference the slip-angle rate is measured against.
type SlipRateBasis int

const (
	// BasisRaw measures the rate against the previous tick's raw slip angle.
	BasisRaw SlipRateBasis = iota
	// BasisEffective measures it against the previous effective slip angle.
	BasisEffective
)

func (b SlipRateBasis) String() string {
	switch b {
	case BasisRaw:
		return "raw"
	case BasisEffective:
		return "effective"
	default:
		return fmt.Sprintf("SlipRateBasis(%d)", int(b))
	}
}

func ParseSlipRateBasis(s string) (SlipRateBasis, error) {
	switch s {
	case "", "raw":
		return BasisRaw, nil
	case "effective":
		return BasisEffective, nil
	default:
		return 0, fmt.Errorf("%w: slip rate basis %q", dynamo.ErrUnknownComponent, s)
	}
}

// SlipAngleLinear computes kinematic slip angles from the local velocities.
type SlipAngleLinear struct {
	Tolerance float64 // velocity floor, m/s
	Clamp     float64 // rad
	Basis     SlipRateBasis
}

func NewSlipAngleLinear(t Tuning) (*SlipAngleLinear, error) {
	basis, err := ParseSlipRateBasis(t.SlipRateBasis)
	if err != nil {
		return nil, err
	}
	return &SlipAngleLinear{
		Tolerance: t.SlipTolerance,
		Clamp:     dynamo.Rad(t.SlipClampDeg),
		Basis:     basis,
	}, nil
}

func (m *SlipAngleLinear) Slip(s *dynamo.State, p *dynamo.Params, delta, dt float64) {
	vx := s.LongVel
	var floored float64
	if vx >= 0 {
		floored = math.Max(vx, m.Tolerance)
	} else {
		floored = math.Min(vx, -m.Tolerance)
	}

	front := math.Atan((s.LatVel+p.DistFront*s.YawRate)/floored) - dynamo.Sign(vx)*delta
	rear := math.Atan((s.LatVel - p.DistRear*s.YawRate) / floored)
	front = clamp(front, m.Clamp)
	rear = clamp(rear, m.Clamp)

	prevFront, prevRear := s.SlipFront, s.SlipRear
	if m.Basis == BasisEffective {
		prevFront, prevRear = s.SlipEffFront, s.SlipEffRear
	}
	s.SlipRateFront = (front - prevFront) / dt
	s.SlipRateRear = (rear - prevRear) / dt

	s.SlipFront = front
	s.SlipRear = rear
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
