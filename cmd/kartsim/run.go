package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/experiment"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and store the telemetry",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(cmd)
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	exp, err := experiment.New(name, cfg)
	if err != nil {
		return err
	}

	logger.Info("run starting",
		zap.String("scenario", name),
		zap.Float64("dt", cfg.Sim.Dt),
		zap.Float64("duration", cfg.Sim.Duration),
		zap.String("source", cfg.Inputs.Source),
		zap.String("integrator", cfg.Sim.Integrator))

	start := time.Now()
	result, runErr := exp.Run(cmd.Context())
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	var simErr *dynamo.SimulationError
	if errors.As(runErr, &simErr) {
		logger.Warn("run diverged",
			zap.Int("step", simErr.Step),
			zap.Float64("time", simErr.Time),
			zap.Error(simErr.Wrapped))
	}

	runID, err := st.Save(exp.Metadata(), result)
	if err != nil {
		return err
	}
	logger.Info("run stored", zap.String("id", runID), zap.Int("ticks", result.StepsTaken), zap.Duration("elapsed", elapsed))

	final := result.Final()
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d in %v\n", result.StepsTaken, elapsed.Round(time.Microsecond))
	fmt.Printf("final: x=%.3f y=%.3f yaw=%.1f° vx=%.3f vy=%.3f r=%.3f\n",
		final.X, final.Y, dynamo.Deg(final.Yaw), final.LongVel, final.LatVel, final.YawRate)

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-18s %.6f\n", n, result.Metrics[n])
	}

	return runErr
}
