package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kartsim/internal/analysis"
	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/experiment"
	"github.com/san-kum/kartsim/internal/integrators"
	"github.com/san-kum/kartsim/internal/optim"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOURCE\tDURATION\tDESCRIPTION")
			reg := experiment.NewRegistry()
			for _, name := range reg.List() {
				cfg, err := reg.Config(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%.1fs\t%s\n", name, cfg.Inputs.Source, cfg.Sim.Duration, scenarioInfo[name])
			}
			return w.Flush()
		},
	}
}

func newBenchCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "measure pipeline ticks per second",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INTEGRATOR\tTICKS\tTIME\tTICKS/SEC\tREALTIME")
			for _, name := range integrators.List() {
				cfg := config.DefaultConfig()
				cfg.Sim.Integrator = name
				model, err := cfg.Model()
				if err != nil {
					return err
				}

				s := cfg.Spawn()
				in := dynamo.Input{Steering: 0.3, Drive: 1}
				start := time.Now()
				for i := 0; i < n; i++ {
					model.Step(&s, in)
				}
				elapsed := time.Since(start)

				rate := float64(n) / elapsed.Seconds()
				fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.0fx\n",
					name, n, elapsed.Round(time.Microsecond), rate, rate*model.Dt())
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&n, "ticks", 1_000_000, "ticks per integrator")
	return cmd
}

func newTuneCmd() *cobra.Command {
	var (
		params   []string
		metric   string
		maximize bool
		parallel int
		top      int
	)
	cmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid search over tuning constants",
		Example: "  kartsim tune slalom --param relax_damping=50,100,200 --param yaw_damping=300,500 \\\n" +
			"      --metric max_slip_deg",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, name, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			names, ranges, err := parseGrid(params)
			if err != nil {
				return err
			}
			g, err := optim.NewGridSearch(names, ranges)
			if err != nil {
				return err
			}
			g.Parallel = parallel
			g.Maximize = maximize

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			logger.Info("grid search starting",
				zap.String("scenario", name),
				zap.Strings("params", names),
				zap.Int("points", len(g.Points())),
				zap.String("metric", metric))

			start := time.Now()
			trials, err := g.Search(cmd.Context(), cfg, metric)
			if err != nil && !errors.Is(err, optim.ErrNoFeasiblePoint) {
				return err
			}
			logger.Info("grid search done", zap.Duration("elapsed", time.Since(start)))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "RANK\t%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
			for i, tr := range trials {
				if i >= top {
					break
				}
				vals := make([]string, len(names))
				for j, n := range names {
					vals[j] = strconv.FormatFloat(tr.Params[n], 'g', -1, 64)
				}
				result := fmt.Sprintf("%.6g", tr.Value)
				if tr.Err != nil {
					result = "failed: " + tr.Err.Error()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, strings.Join(vals, "\t"), result)
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			return err
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().StringArrayVar(&params, "param", nil, "name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "max_slip_deg", "metric to optimise")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	cmd.Flags().IntVar(&parallel, "parallel", runtime.NumCPU(), "concurrent runs")
	cmd.Flags().IntVar(&top, "top", 10, "rows to print")
	return cmd
}

// parseGrid turns "name=v1,v2" flags into parallel name and value lists.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("at least one --param is required")
	}
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--param %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func newStabilityCmd() *cobra.Command {
	var (
		sweepDrive float64
		steps      int
		settle     float64
	)
	cmd := &cobra.Command{
		Use:   "stability [scenario]",
		Short: "divergence rate and steady-state steering response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, name, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			model, err := cfg.Model()
			if err != nil {
				return err
			}
			ctrl, err := cfg.Controller()
			if err != nil {
				return err
			}

			lambda := analysis.DivergenceRate(model, ctrl, cfg.Spawn(), cfg.Sim.Duration, 1e-6)
			fmt.Printf("scenario %s: divergence rate %.4g 1/s over %.1fs\n\n", name, lambda, cfg.Sim.Duration)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEER\tYAW RATE\tMIN\tMAX\tSPEED\tSTATUS")
			for _, p := range analysis.SteeringSweep(model, cfg.Spawn(), sweepDrive, 0, 1, steps, settle, 1) {
				status := "steady"
				switch {
				case p.Diverged:
					status = "diverged"
				case p.Oscillating(0.05):
					status = "oscillating"
				}
				fmt.Fprintf(w, "%.2f\t%+.4f\t%+.4f\t%+.4f\t%.2f\t%s\n", p.Steering, p.Mean, p.Min, p.Max, p.Speed, status)
			}
			return w.Flush()
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().Float64Var(&sweepDrive, "sweep-drive", 1, "drive input held during the steering sweep")
	cmd.Flags().IntVar(&steps, "steps", 11, "steering values between 0 and 1")
	cmd.Flags().Float64Var(&settle, "settle", 3, "seconds before the yaw rate is recorded")
	return cmd
}
