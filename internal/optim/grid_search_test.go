package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/dynamo"
)

func shortRun(name string) *config.Config {
	cfg := config.GetPreset(name)
	cfg.Sim.Duration = 1
	return cfg
}

func TestPoints(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	require.NoError(t, err)

	points := g.Points()
	require.Len(t, points, 6)
	assert.Equal(t, map[string]float64{"a": 1, "b": 10}, points[0])
	assert.Equal(t, map[string]float64{"a": 1, "b": 20}, points[1])
	assert.Equal(t, map[string]float64{"a": 2, "b": 30}, points[5])
}

func TestNewGridSearchValidates(t *testing.T) {
	_, err := NewGridSearch([]string{"a"}, nil)
	assert.Error(t, err)
	_, err = NewGridSearch([]string{"a"}, [][]float64{{}})
	assert.Error(t, err)
}

func TestSearchMaximizesTopSpeed(t *testing.T) {
	g, err := NewGridSearch([]string{"forward_gain"}, [][]float64{{0.5, 1}})
	require.NoError(t, err)
	g.Maximize = true
	g.Parallel = 2

	trials, err := g.Search(context.Background(), shortRun("sport"), "top_speed")
	require.NoError(t, err)
	require.Len(t, trials, 2)

	best, val, ok := Best(trials)
	require.True(t, ok)
	assert.Equal(t, 1.0, best["forward_gain"])
	assert.InDelta(t, 11.07, val, 0.01)
	assert.InDelta(t, 10.49, trials[1].Value, 0.01)
}

func TestSearchKeepsDivergentPointsLast(t *testing.T) {
	base := shortRun("prototype")
	base.Inputs.Steering = 0.5

	g, err := NewGridSearch([]string{"relax_damping"}, [][]float64{{100000, 100}})
	require.NoError(t, err)

	trials, err := g.Search(context.Background(), base, "distance")
	require.NoError(t, err)
	require.Len(t, trials, 2)

	assert.NoError(t, trials[0].Err)
	assert.Equal(t, 100.0, trials[0].Params["relax_damping"])
	assert.True(t, errors.Is(trials[1].Err, dynamo.ErrUnstable), "got %v", trials[1].Err)
}

func TestSearchUnknownParam(t *testing.T) {
	g, err := NewGridSearch([]string{"flux_capacitance"}, [][]float64{{1}})
	require.NoError(t, err)

	trials, err := g.Search(context.Background(), shortRun("sport"), "top_speed")
	assert.ErrorIs(t, err, ErrNoFeasiblePoint)
	require.Len(t, trials, 1)
	assert.ErrorIs(t, trials[0].Err, dynamo.ErrUnknownComponent)
}

func TestSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"forward_gain"}, [][]float64{{1}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Search(ctx, shortRun("sport"), "top_speed")
	assert.ErrorIs(t, err, context.Canceled)
}
