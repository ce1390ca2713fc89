package analysis

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/sim"
)

// SweepPoint is the yaw response recorded for one steering input after the
// transient has settled. Min and Max differ when the kart keeps oscillating.
type SweepPoint struct {
	Steering float64
	Mean     float64
	Min, Max float64
	Speed    float64
	Diverged bool
}

// SteeringSweep holds drive constant and, for steps steering values evenly
// spaced over [from, to], runs transient seconds from spawn and then records
// yaw rate over the next record seconds.
func SteeringSweep(model sim.Model, spawn dynamo.State, drive, from, to float64, steps int, transient, record float64) []SweepPoint {
	if steps < 2 {
		steps = 2
	}
	dt := model.Dt()
	settle := sim.Ticks(transient, dt)
	samples := max(sim.Ticks(record, dt), 1)
	stride := (to - from) / float64(steps-1)

	out := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		in := dynamo.Input{Steering: from + float64(i)*stride, Drive: drive}.Clamp()
		pt := SweepPoint{Steering: in.Steering, Min: math.Inf(1), Max: math.Inf(-1)}

		x := spawn
		for k := 0; k < settle; k++ {
			model.Step(&x, in)
		}
		sum := 0.0
		for k := 0; k < samples; k++ {
			model.Step(&x, in)
			r := x.YawRate
			sum += r
			pt.Min = math.Min(pt.Min, r)
			pt.Max = math.Max(pt.Max, r)
		}

		if !x.IsValid() || math.IsNaN(sum) {
			pt.Diverged = true
			pt.Mean, pt.Min, pt.Max = math.NaN(), math.NaN(), math.NaN()
		} else {
			pt.Mean = sum / float64(samples)
			pt.Speed = x.Speed()
		}
		out = append(out, pt)
	}
	return out
}

// Oscillating reports whether the recorded yaw rate band is wider than tol.
func (p SweepPoint) Oscillating(tol float64) bool {
	return !p.Diverged && p.Max-p.Min > tol
}
