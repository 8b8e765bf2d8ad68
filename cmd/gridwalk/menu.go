package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridwalk/internal/platform/tui"
	"github.com/vovakirdan/gridwalk/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the sandbox with a scenario picker",
	Long: `Start the sandbox in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to start a scenario and Tab to
browse recorded runs. Leaving a scenario returns to the menu.

Examples:
  gridwalk menu
  gridwalk menu --fps 30
  gridwalk menu --db ./runs.db`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagMode, "mode", "", "Stepping mode: step, center, budget")
	menuCmd.Flags().StringVar(&flagSpeed, "speed", "", "Speed preset: slow, normal, fast")
	menuCmd.Flags().BoolVar(&flagAutopilot, "autopilot", false, "Start with autopilot enabled")
}

func runMenu(_ *cobra.Command, _ []string) {
	if err := applyPlayFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := openRecorder()
	cfg := terminalConfig()

	for {
		result, err := tui.RunMenu(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		cfg = result.Config

		if result.Quit {
			break
		}

		if result.WantsRuns {
			goBack, err := tui.RunRunsBoard(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if goBack {
				continue
			}
			break
		}

		sc, err := registry.Create(result.ScenarioID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating scenario: %v\n", err)
			continue
		}

		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}
		if err := tui.Run(sc, tui.Recorder(store), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running scenario: %v\n", err)
		}
	}

	if store != nil {
		store.Close()
	}
}
