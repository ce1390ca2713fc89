package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/sim"
)

func TestRegistryListsPresetsAndScripts(t *testing.T) {
	names := NewRegistry().List()
	for _, want := range append(config.ListPresets(), "brake_test", "ramp", "coast") {
		assert.Contains(t, names, want)
	}
}

func TestRegistryUnknown(t *testing.T) {
	_, err := NewRegistry().Get("moon_buggy")
	assert.ErrorIs(t, err, dynamo.ErrUnknownComponent)
}

func TestStraightLineScenario(t *testing.T) {
	exp, err := NewRegistry().Get("straight_line")
	require.NoError(t, err)

	res, err := exp.Run(context.Background())
	require.NoError(t, err)

	final := res.Final()
	assert.InDelta(t, 35.018, final.LongVel, 0.01)
	assert.InDelta(t, -math.Pi/2, final.Yaw, 1e-9)
	assert.InDelta(t, -203.85, final.Y, 0.05)
	assert.Equal(t, 8000, res.StepsTaken)
	assert.InDelta(t, final.LongVel, res.Metrics["top_speed"], 1e-9)
}

func TestOverridesApplyToCopy(t *testing.T) {
	reg := NewRegistry()
	exp, err := reg.Get("sport", func(c *config.Config) { c.Sim.GripCoeff = 1 })
	require.NoError(t, err)
	assert.Equal(t, 1.0, exp.Spawn().GripCoeff)

	again, err := reg.Config("sport")
	require.NoError(t, err)
	assert.Equal(t, dynamo.DefaultGripCoeff, again.Sim.GripCoeff)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sim.Dt = 0
	_, err := New("bad", cfg)
	assert.ErrorIs(t, err, dynamo.ErrInvalidTimestep)
}

func TestMetadata(t *testing.T) {
	exp, err := NewRegistry().Get("slalom")
	require.NoError(t, err)

	meta := exp.Metadata()
	assert.Equal(t, "slalom", meta.Name)
	assert.Equal(t, "script:slalom", meta.Source)
	assert.Equal(t, config.DefaultDt, meta.Dt)
	assert.Equal(t, exp.Config().Fingerprint(), meta.ConfigHash)

	other, err := NewRegistry().Get("slalom", func(c *config.Config) { c.Sim.GripCoeff = 1 })
	require.NoError(t, err)
	assert.NotEqual(t, meta.ConfigHash, other.Metadata().ConfigHash)
}

func TestSweepOfExperiments(t *testing.T) {
	reg := NewRegistry()
	var jobs []sim.Job
	for _, grip := range []float64{1, 2} {
		exp, err := reg.Get("sport", func(c *config.Config) {
			c.Sim.GripCoeff = grip
			c.Sim.Duration = 1
		})
		require.NoError(t, err)
		jobs = append(jobs, exp.Job())
	}

	results, err := sim.Sweep(context.Background(), jobs, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.86, results[0].Final().LongVel, 0.01)
	assert.InDelta(t, 11.07, results[1].Final().LongVel, 0.01)
}
