package main

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kartsim/internal/audio"
	"github.com/san-kum/kartsim/internal/experiment"
	"github.com/san-kum/kartsim/internal/logging"
	"github.com/san-kum/kartsim/internal/sim"
	"github.com/san-kum/kartsim/internal/viz"
)

func newLiveCmd() *cobra.Command {
	var auto, sound bool
	cmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "drive the kart in real time in the terminal",
		Long: "Runs the model on a real-time scheduler at the configured dt and shows it in a\n" +
			"terminal dashboard. Without a scenario a picker is shown. Logs go to\n" +
			"<data>/live.log while the dashboard owns the terminal.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args, auto, sound)
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().BoolVar(&auto, "auto", false, "drive with the scenario's input source instead of the keyboard")
	cmd.Flags().BoolVar(&sound, "sound", false, "play an engine note (needs a portaudio build)")
	return cmd
}

func runLive(cmd *cobra.Command, args []string, auto, sound bool) error {
	if len(args) == 0 && configFile == "" {
		picked, err := pickScenario()
		if err != nil || picked == "" {
			return err
		}
		args = []string{picked}
	}

	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	model, err := cfg.Model()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logger, err := logging.NewWithOutput(logLevel, filepath.Join(dataDir, "live.log"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := []sim.SchedulerOption{sim.WithLogger(logger.Named(name))}
	if auto {
		ctrl, err := cfg.Controller()
		if err != nil {
			return err
		}
		opts = append(opts, sim.WithController(ctrl))
	}
	if sound {
		note := audio.NewEngineNote()
		player, err := audio.Open(note)
		if err != nil {
			logger.Warn("engine sound disabled", zap.Error(err))
		} else {
			defer player.Close()
			opts = append(opts, sim.WithObserver(note))
		}
	}

	sched := sim.NewScheduler(model, cfg.Spawn(), opts...)
	sched.Start(cmd.Context())
	defer sched.Stop()

	dash := viz.NewDashboard(sched, model.Params(), cfg.Spawn(), viz.DashboardConfig{
		Title:      name,
		FPS:        cfg.Display.FPS,
		WorldScale: cfg.Display.WorldScale,
		Auto:       auto,
	})
	_, err = tea.NewProgram(dash, tea.WithAltScreen()).Run()
	return err
}

func pickScenario() (string, error) {
	var choices []viz.Choice
	for _, name := range experiment.NewRegistry().List() {
		choices = append(choices, viz.Choice{Name: name, Info: scenarioInfo[name]})
	}
	picker := viz.NewPicker("KARTSIM  pick a scenario", choices)
	if _, err := tea.NewProgram(picker).Run(); err != nil {
		return "", err
	}
	return picker.Selected, nil
}
