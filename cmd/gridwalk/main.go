// gridwalk is a terminal sandbox for a grid-constrained kinematic agent.
//
// Usage:
//
//	gridwalk list                  - List available scenarios
//	gridwalk play <scenario>       - Drive the agent through a scenario
//	gridwalk menu                  - Pick scenarios interactively
//	gridwalk simulate <scenario>   - Run a scenario headless on autopilot
//	gridwalk runs [scenario]       - Show recorded runs
//	gridwalk serve                 - Start SSH server for remote sessions
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: from config, 60)
//	--seed <value>   - Set RNG seed for reproducible runs
//	--db <path>      - Set database path (default: ~/.gridwalk/runs.db)
//	--config <path>  - Use a custom sandbox config YAML
//	--verbose        - Enable debug logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridwalk/internal/config"
	"github.com/vovakirdan/gridwalk/internal/sim"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagConfig  string
	flagVerbose bool

	// sandboxCfg is loaded before every command runs.
	sandboxCfg config.SandboxConfig
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridwalk",
	Short: "gridwalk - a grid-constrained agent sandbox for your terminal",
	Long: `gridwalk moves a kinematic agent through walkable grid cells.
The agent travels in continuous world space but never enters a locked cell,
snaps onto cell centers before turning and keeps to one axis at a time.

Available commands:
  list      - Show all scenarios
  play      - Drive the agent through a scenario
  menu      - Interactive scenario picker
  simulate  - Headless autopilot runs
  runs      - Recorded runs and statistics
  serve     - Start SSH server for remote sessions

Examples:
  gridwalk list
  gridwalk play corridor
  gridwalk play plaza --mode budget --speed fast
  gridwalk simulate --all --ticks 600
  gridwalk serve --ssh :2222`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = use config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.gridwalk/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom sandbox config YAML")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads the sandbox config, registers user levels and applies the
// agent overrides used by every walker created afterwards.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadSandbox(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagFPS > 0 {
		cfg.Simulation.TickRate = flagFPS
	}
	sandboxCfg = cfg

	logger := newLogger("gridwalk")
	if dir := config.ExpandHome(cfg.Levels.Dir); dir != "" {
		if _, statErr := os.Stat(dir); statErr == nil {
			added, regErr := sim.RegisterDir(dir)
			if regErr != nil {
				logger.Warn("could not load levels", "dir", dir, "error", regErr)
			} else if len(added) > 0 {
				logger.Debug("registered levels", "dir", dir, "ids", added)
			}
		}
	}

	settings, err := settingsFrom(cfg)
	if err != nil {
		return err
	}
	sim.Configure(settings)
	return nil
}

// settingsFrom maps the sandbox config onto walker overrides.
func settingsFrom(cfg config.SandboxConfig) (sim.Settings, error) {
	s := sim.Settings{
		SpeedScale: cfg.Agent.SpeedScale,
		Autopilot:  cfg.Agent.Autopilot,
		CellSize:   cfg.Levels.CellSize,
	}
	if cfg.Agent.Mode != "" {
		mode, err := sim.ParseMode(cfg.Agent.Mode)
		if err != nil {
			return s, err
		}
		s.Mode = mode
	}
	return s, nil
}

// newLogger creates a stderr logger honoring --verbose.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
