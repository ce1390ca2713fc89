// Package optim searches tuning constants for the configuration that
// minimises a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/experiment"
)

var ErrNoFeasiblePoint = errors.New("optim: every grid point failed")

// Trial is one evaluated grid point. Err is set when the run could not be
// built or diverged; Value is then +Inf.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// Parallel bounds the number of concurrent runs, 0 means unbounded.
	Parallel int
	// Maximize flips the objective.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points enumerates the cartesian product of the ranges, last parameter
// varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*out = append(*out, point)
		return
	}
	for _, val := range g.ranges[depth] {
		current[g.paramNames[depth]] = val
		g.enumerate(depth+1, current, out)
	}
}

// Search runs base once per grid point with the point's tuning constants
// applied and returns all trials ordered best first. Failed points are kept
// at the end; only ctx cancellation aborts the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) ([]Trial, error) {
	points := g.Points()
	trials := make([]Trial, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	if g.Parallel > 0 {
		eg.SetLimit(g.Parallel)
	}
	for i, point := range points {
		eg.Go(func() error {
			trials[i] = g.evaluate(ctx, base, point, metric)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool {
		a, b := trials[i], trials[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if g.Maximize {
			return a.Value > b.Value
		}
		return a.Value < b.Value
	})

	if len(trials) == 0 || trials[0].Err != nil {
		return trials, ErrNoFeasiblePoint
	}
	return trials, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, point map[string]float64, metric string) Trial {
	trial := Trial{Params: point, Value: math.Inf(1)}

	cfg := base.Clone()
	cfg.Sim.ValidateState = true
	for name, val := range point {
		if err := cfg.Tuning.SetParam(name, val); err != nil {
			trial.Err = err
			return trial
		}
	}

	exp, err := experiment.New("tune", cfg)
	if err != nil {
		trial.Err = err
		return trial
	}
	res, err := exp.Run(ctx)
	if err != nil {
		trial.Err = err
		return trial
	}

	val, ok := res.Metrics[metric]
	if !ok {
		trial.Err = fmt.Errorf("optim: unknown metric %q", metric)
		return trial
	}
	if math.IsNaN(val) {
		trial.Err = fmt.Errorf("optim: metric %s is NaN", metric)
		return trial
	}
	trial.Value = val
	return trial
}

// Best returns the best feasible trial's parameters and value.
func Best(trials []Trial) (map[string]float64, float64, bool) {
	if len(trials) == 0 || trials[0].Err != nil {
		return nil, math.Inf(1), false
	}
	return trials[0].Params, trials[0].Value, true
}
