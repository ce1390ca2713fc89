package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/kartsim/internal/automation"
	"github.com/san-kum/kartsim/internal/experiment"
	"github.com/san-kum/kartsim/internal/storage"
)

func newBatchCmd() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "run a YAML list of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := automation.LoadBatch(args[0])
			if err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			var st storage.Store
			if !noSave {
				s, err := openStore()
				if err != nil {
					return err
				}
				defer s.Close()
				st = s
			}

			results, err := b.Run(cmd.Context(), experiment.NewRegistry(), st, logger)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRUN\tSPEED\tSTATUS")
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					status = "diverged"
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", r.Name, r.RunID, r.Result.Final().Speed(), status)
			}
			if ferr := w.Flush(); ferr != nil && err == nil {
				err = ferr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	mc := &automation.MonteCarlo{}
	cmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "perturb spawn velocities and count unstable runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, name, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			mc.Base = cfg

			trials, err := mc.Run(cmd.Context())
			if err != nil {
				return err
			}
			stable, unstable := automation.Stats(trials)
			fmt.Printf("scenario %s: %d trials, %d stable, %d unstable\n", name, len(trials), stable, unstable)
			return nil
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().IntVar(&mc.Trials, "trials", 50, "number of trials")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&mc.SpeedSpread, "spread-speed", 2, "longitudinal velocity spread (m/s)")
	cmd.Flags().Float64Var(&mc.LatSpread, "spread-lat", 0.5, "lateral velocity spread (m/s)")
	cmd.Flags().Float64Var(&mc.YawRateSpread, "spread-yaw", 0.5, "yaw rate spread (rad/s)")
	cmd.Flags().IntVar(&mc.Parallel, "parallel", 0, "concurrent trials (0 = all)")
	return cmd
}
