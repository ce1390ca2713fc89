package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/experiment"
	"github.com/san-kum/kartsim/internal/logging"
	"github.com/san-kum/kartsim/internal/storage"
)

var (
	dataDir   string
	logLevel  string
	storeKind string

	configFile string
	dt         float64
	duration   float64
	ticks      int
	steer      float64
	drive      float64
	source     string
	script     string
	cruise     float64
	grip       float64
	sample     int
	integrator string
	spawnYaw   float64
)

var scenarioInfo = map[string]string{
	"sport":         "shipped kart, full throttle",
	"prototype":     "historical tuning, diverges when cornering",
	"low_grip":      "grip coefficient 1.0",
	"straight_line": "spawn heading -90°, full throttle for 8 s",
	"slalom":        "scripted slalom",
	"cruise":        "PID speed hold on a constant arc",
	"brake_test":    "accelerate then brake to a stop",
	"ramp":          "steering ramp at full throttle",
	"coast":         "no input",
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "kartsim",
		Short:         "real-time go-kart dynamics simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kartsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "file", "run storage (file, sqlite)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportJSONCmd(),
		newExportCSVCmd(),
		newExportSVGCmd(),
		newAnalyzeCmd(),
		newPhaseCmd(),
		newStabilityCmd(),
		newPresetsCmd(),
		newBenchCmd(),
		newTuneCmd(),
		newBatchCmd(),
		newMonteCarloCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// addScenarioFlags registers the flags that adjust a scenario's config.
func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml), replaces the preset")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	f.IntVar(&ticks, "ticks", 0, "duration in ticks, overrides --time")
	f.Float64Var(&steer, "steer", 0, "constant steering input [-1, 1]")
	f.Float64Var(&drive, "drive", 1, "constant drive input [-1, 1]")
	f.StringVar(&source, "source", "", "input source (none, constant, script, cruise)")
	f.StringVar(&script, "script", "", "built-in script name or keyframe yaml")
	f.Float64Var(&cruise, "cruise", 0, "cruise control target speed (m/s)")
	f.Float64Var(&grip, "grip", 0, "grip coefficient")
	f.IntVar(&sample, "sample", 0, "record every n-th tick")
	f.StringVar(&integrator, "integrator", "", "integrator (semi-implicit, euler)")
	f.Float64Var(&spawnYaw, "spawn-yaw", 0, "spawn heading (deg)")
}

// loadConfig resolves the scenario named by args[0] (default sport), or the
// --config file, and applies any flags the user set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := "sport"
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if len(args) == 0 {
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		}
	} else {
		cfg, err = experiment.NewRegistry().Config(name)
	}
	if err != nil {
		return nil, "", err
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if f.Changed("time") {
		cfg.Sim.Duration = duration
	}
	if f.Changed("ticks") {
		cfg.Sim.Duration = float64(ticks) * cfg.Sim.Dt
	}
	if f.Changed("steer") || f.Changed("drive") {
		cfg.Inputs.Source = "constant"
		cfg.Inputs.Steering, cfg.Inputs.Drive = steer, drive
	}
	if f.Changed("script") {
		cfg.Inputs.Source = "script"
		cfg.Inputs.Script = script
		cfg.Inputs.Frames = nil
	}
	if f.Changed("cruise") {
		cfg.Inputs.Source = "cruise"
		cfg.Inputs.Cruise.Target = cruise
	}
	if f.Changed("source") {
		cfg.Inputs.Source = source
	}
	if f.Changed("grip") {
		cfg.Sim.GripCoeff = grip
	}
	if f.Changed("sample") {
		cfg.Sim.SampleEvery = sample
	}
	if f.Changed("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if f.Changed("spawn-yaw") {
		cfg.Sim.SpawnYawDeg = spawnYaw
	}
	if !f.Changed("log-level") && cfg.Log.Level != "" {
		logLevel = cfg.Log.Level
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func newLogger() (*zap.Logger, error) {
	return logging.New(logLevel)
}

func openStore() (storage.Store, error) {
	st, err := storage.Open(storeKind, dataDir)
	if err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// loadRun opens the store and reads one run with its telemetry.
func loadRun(runID string) (*storage.RunMetadata, *storage.Trajectory, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if tr.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, tr, nil
}

// output returns stdout for "" or "-", otherwise a created file.
func output(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
