package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridwalk/internal/config"
	"github.com/vovakirdan/gridwalk/internal/core"
	"github.com/vovakirdan/gridwalk/internal/platform/tui"
	"github.com/vovakirdan/gridwalk/internal/registry"
	"github.com/vovakirdan/gridwalk/internal/sim"
	"github.com/vovakirdan/gridwalk/internal/storage"
)

var (
	flagMode      string
	flagSpeed     string
	flagAutopilot bool
)

var playCmd = &cobra.Command{
	Use:   "play <scenario>",
	Short: "Drive the agent through a scenario",
	Long: `Start the sandbox for the specified scenario.

Controls:
  WASD/Arrows  - Request a turn (buffered until the agent can take it)
  Space        - Toggle autopilot
  M            - Cycle stepping mode (step, center, budget)
  P            - Pause
  R            - Restart
  Ctrl+S       - Save a screenshot to ~/.gridwalk/screenshots
  Esc/B, Q     - Quit

Stepping modes:
  step    - Free stepping with axis-locked turns
  center  - Snap to the cell center, then turn
  budget  - Spend each tick's distance across cell centers

Speed presets:
  slow, normal, fast

Examples:
  gridwalk play corridor
  gridwalk play maze --mode budget
  gridwalk play plaza --speed fast --autopilot`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Stepping mode: step, center, budget")
	playCmd.Flags().StringVar(&flagSpeed, "speed", "", "Speed preset: slow, normal, fast")
	playCmd.Flags().BoolVar(&flagAutopilot, "autopilot", false, "Start with autopilot enabled")
}

// applyPlayFlags layers the play flags over the configured walker settings.
func applyPlayFlags() error {
	cfg := sandboxCfg
	if flagSpeed != "" {
		if err := config.ApplyPreset(&cfg, config.SpeedPreset(flagSpeed)); err != nil {
			return err
		}
	}
	settings, err := settingsFrom(cfg)
	if err != nil {
		return err
	}
	if flagMode != "" {
		mode, err := sim.ParseMode(flagMode)
		if err != nil {
			return err
		}
		settings.Mode = mode
	}
	if flagAutopilot {
		settings.Autopilot = true
	}
	sim.Configure(settings)
	return nil
}

// terminalConfig builds the runtime config from the terminal size.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: sandboxCfg.Simulation.TickRate,
		Seed:     flagSeed,
	}
}

// openRecorder opens the runs database when recording is enabled.
// Failures are reported and the sandbox continues without recording.
func openRecorder() *storage.Store {
	if !sandboxCfg.Storage.RecordRuns {
		return nil
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		return nil
	}
	return store
}

func runPlay(_ *cobra.Command, args []string) {
	id := args[0]

	if !registry.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'gridwalk list' to see available scenarios.")
		os.Exit(1)
	}

	if err := applyPlayFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sc, err := registry.Create(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating scenario: %v\n", err)
		os.Exit(1)
	}

	store := openRecorder()
	runErr := tui.Run(sc, tui.Recorder(store), terminalConfig())

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running scenario: %v\n", runErr)
		os.Exit(1)
	}
}
