package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/kartsim/internal/analysis"
	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/export"
	"github.com/san-kum/kartsim/internal/storage"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tTICKS\tINTEG\tSOURCE\tCONFIG\tTOP SPEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\t%s\t%.8s\t%.2f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.Integrator,
			run.Source,
			run.ConfigHash,
			run.Metrics["top_speed"],
		)
	}
	return w.Flush()
}

func newPlotCmd() *cobra.Command {
	var columns []string
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot telemetry channels of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("run %s (%s, %.2fs)\n\n", meta.ID, meta.Name, meta.Duration)
			for _, col := range columns {
				data, err := analysis.Column(tr.States, col)
				if err != nil {
					return err
				}
				graph := asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(col),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&columns, "column", []string{"long_vel", "yaw_rate"}, "telemetry columns to plot")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run and its telemetry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			f, closeFn, err := output(out)
			if err != nil {
				return err
			}
			if err := storage.ExportJSON(f, meta, tr); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's telemetry as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			f, closeFn, err := output(out)
			if err != nil {
				return err
			}
			if err := storage.WriteCSV(f, tr); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportSVGCmd() *cobra.Command {
	var out string
	opts := export.DefaultSVGOptions()
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a run's ground track as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".svg"
			}
			f, closeFn, err := output(out)
			if err != nil {
				return err
			}
			if err := export.TrajectorySVG(f, tr.States, opts); err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			if out != "-" {
				fmt.Printf("wrote %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <run_id>.svg, - for stdout)")
	cmd.Flags().Float64Var(&opts.WorldScale, "scale", config.DefaultWorldScale, "pixels per metre")
	cmd.Flags().Float64Var(&opts.GridEvery, "grid", opts.GridEvery, "grid spacing in metres, 0 for none")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a telemetry channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if tr.Len() < 4 {
				return fmt.Errorf("run %s has too few samples for a spectrum", meta.ID)
			}
			data, err := analysis.Column(tr.States, column)
			if err != nil {
				return err
			}
			spacing := tr.Times[1] - tr.Times[0]

			fmt.Printf("frequency analysis: %s\n", meta.ID)
			fmt.Printf("channel: %s, %d samples every %.4fs\n\n", column, len(data), spacing)

			ps := analysis.PowerSpectrum(data)
			plotData := ps[:max(len(ps)/4, 2)]
			fmt.Println(asciigraph.Plot(plotData,
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum ("+column+")"),
			))
			fmt.Println()

			freq, mag := analysis.DominantFrequency(data, spacing)
			fmt.Printf("dominant frequency: %.3f hz (magnitude %.4g)\n", freq, mag)
			if freq > 0 {
				fmt.Printf("period: %.3f s\n", 1/freq)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", "yaw_rate", "telemetry column")
	return cmd
}

func newPhaseCmd() *cobra.Command {
	var xName, yName string
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two telemetry channels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			p, err := analysis.NewPhasePortrait(tr.States, xName, yName)
			if err != nil {
				return err
			}
			fmt.Printf("%s (x) vs %s (y)\n\n", xName, yName)
			fmt.Print(p.ASCII(80, 30))
			return nil
		},
	}
	cmd.Flags().StringVar(&xName, "x", "lat_vel", "column on the x axis")
	cmd.Flags().StringVar(&yName, "y", "yaw_rate", "column on the y axis")
	return cmd
}
