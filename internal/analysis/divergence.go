package analysis

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/sim"
)

// DivergenceRate estimates the largest Lyapunov exponent of a run by
// stepping a reference and a perturbed copy side by side. The copy starts
// with its lateral velocity off by perturbation; separation is measured on
// (vx, vy, r) and the whole difference is rescaled back every tick.
//
// Negative means perturbations die out. A run that goes non-finite returns
// +Inf.
func DivergenceRate(model sim.Model, ctrl dynamo.Controller, x0 dynamo.State, duration, perturbation float64) float64 {
	if perturbation <= 0 {
		return 0
	}

	dt := model.Dt()
	steps := sim.Ticks(duration, dt)
	x, xp := x0, x0
	xp.LatVel += perturbation

	sumLog := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		model.Step(&x, ctrl.Compute(&x, t).Clamp())
		model.Step(&xp, ctrl.Compute(&xp, t).Clamp())

		if !x.IsValid() || !xp.IsValid() {
			return math.Inf(1)
		}

		sep := separation(&x, &xp)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		count++
		xp = renormalize(&x, &xp, perturbation/sep)
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}

func separation(a, b *dynamo.State) float64 {
	dv := b.LongVel - a.LongVel
	dl := b.LatVel - a.LatVel
	dr := b.YawRate - a.YawRate
	return math.Sqrt(dv*dv + dl*dl + dr*dr)
}

func renormalize(ref, pert *dynamo.State, scale float64) dynamo.State {
	r, p := ref.Vector(), pert.Vector()
	for i := range p {
		p[i] = r[i] + (p[i]-r[i])*scale
	}
	return dynamo.StateFromVector(p)
}
