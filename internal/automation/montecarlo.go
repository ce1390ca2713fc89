package automation

import (
	"context"
	"math"
	"math/rand"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/experiment"
	"github.com/san-kum/kartsim/internal/sim"
)

// MonteCarlo perturbs the spawn velocities of a scenario and checks whether
// each trial stays bounded.
type MonteCarlo struct {
	Base          *config.Config
	Trials        int
	Seed          int64
	SpeedSpread   float64 // m/s, uniform in ±spread on longitudinal velocity
	LatSpread     float64 // m/s on lateral velocity
	YawRateSpread float64 // rad/s
	Parallel      int

	// Trials whose speed or yaw rate exceed these limits count as unstable.
	MaxSpeed   float64
	MaxYawRate float64
}

type Trial struct {
	ID                       int
	LongVel, LatVel, YawRate float64 // initial perturbation
	FinalSpeed, FinalYawRate float64
	Stable                   bool
}

// Run executes all trials concurrently through sim.Sweep. The same seed gives
// the same perturbations.
func (mc *MonteCarlo) Run(ctx context.Context) ([]Trial, error) {
	rng := rand.New(rand.NewSource(mc.Seed))
	spread := func(s float64) float64 { return (rng.Float64()*2 - 1) * s }

	cfg := mc.Base.Clone()
	cfg.Sim.ValidateState = false

	trials := make([]Trial, mc.Trials)
	jobs := make([]sim.Job, mc.Trials)
	for i := range jobs {
		exp, err := experiment.New("montecarlo", cfg)
		if err != nil {
			return nil, err
		}
		job := exp.Job()
		trials[i] = Trial{
			ID:      i,
			LongVel: spread(mc.SpeedSpread),
			LatVel:  spread(mc.LatSpread),
			YawRate: spread(mc.YawRateSpread),
		}
		job.Initial.LongVel += trials[i].LongVel
		job.Initial.LatVel += trials[i].LatVel
		job.Initial.YawRate += trials[i].YawRate
		jobs[i] = job
	}

	results, err := sim.Sweep(ctx, jobs, mc.Parallel)
	if err != nil {
		return nil, err
	}

	maxSpeed, maxYaw := mc.MaxSpeed, mc.MaxYawRate
	if maxSpeed <= 0 {
		maxSpeed = 100
	}
	if maxYaw <= 0 {
		maxYaw = 20
	}
	for i, res := range results {
		final := res.Final()
		trials[i].FinalSpeed = final.Speed()
		trials[i].FinalYawRate = final.YawRate
		trials[i].Stable = final.IsValid() &&
			final.Speed() <= maxSpeed &&
			math.Abs(final.YawRate) <= maxYaw
	}
	return trials, nil
}

func Stats(trials []Trial) (stable, unstable int) {
	for _, t := range trials {
		if t.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
