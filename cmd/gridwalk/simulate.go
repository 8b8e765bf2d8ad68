package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/gridwalk/internal/core"
	"github.com/vovakirdan/gridwalk/internal/registry"
	"github.com/vovakirdan/gridwalk/internal/sim"
	"github.com/vovakirdan/gridwalk/internal/storage"
)

var (
	flagTicks       uint64
	flagAll         bool
	flagNoRecord    bool
	flagNoAutopilot bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario]",
	Short: "Run scenarios headless on autopilot",
	Long: `Run one or all scenarios without a terminal UI. The agent drives itself
on autopilot for a fixed number of ticks and the run is recorded.

With --verbose every tick is logged at debug level.

Examples:
  gridwalk simulate corridor
  gridwalk simulate maze --mode budget --ticks 1200
  gridwalk simulate --all --seed 42`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().Uint64Var(&flagTicks, "ticks", 0, "Ticks per run (0 = use config)")
	simulateCmd.Flags().BoolVar(&flagAll, "all", false, "Simulate every registered scenario concurrently")
	simulateCmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not save runs to the database")
	simulateCmd.Flags().BoolVar(&flagNoAutopilot, "no-autopilot", false, "Keep the agent on its initial heading")
	simulateCmd.Flags().StringVar(&flagMode, "mode", "", "Stepping mode: step, center, budget")
	simulateCmd.Flags().StringVar(&flagSpeed, "speed", "", "Speed preset: slow, normal, fast")
}

// simulation is the outcome of one headless run.
type simulation struct {
	ID      uuid.UUID
	Summary sim.RunSummary
	Elapsed time.Duration
}

func runSimulate(_ *cobra.Command, args []string) {
	logger := newLogger("simulate")

	ids, err := simulationTargets(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := applyPlayFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	settings := sim.CurrentSettings()
	settings.MaxTicks = flagTicks
	if settings.MaxTicks == 0 {
		settings.MaxTicks = sandboxCfg.Simulation.MaxTicks
	}
	if settings.MaxTicks == 0 {
		fmt.Fprintln(os.Stderr, "Error: simulate needs a tick limit (--ticks or simulation.max_ticks)")
		os.Exit(1)
	}
	sim.Configure(settings)

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := core.RuntimeConfig{
		ScreenW:  core.DefaultConfig().ScreenW,
		ScreenH:  core.DefaultConfig().ScreenH,
		TickRate: sandboxCfg.Simulation.TickRate,
		Seed:     seed,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := make([]simulation, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			res, err := simulateOne(gctx, logger.With("scenario", id), id, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !flagNoRecord && sandboxCfg.Storage.RecordRuns {
		saveSimulations(logger, results)
	}
	printSimulations(results)
}

// simulationTargets resolves which scenarios to run.
func simulationTargets(args []string) ([]string, error) {
	if flagAll {
		if len(args) > 0 {
			return nil, errors.New("pass either a scenario or --all, not both")
		}
		infos := registry.List()
		ids := make([]string, len(infos))
		for i, info := range infos {
			ids[i] = info.ID
		}
		return ids, nil
	}
	if len(args) == 0 {
		return nil, errors.New("missing scenario (or use --all)")
	}
	if !registry.Exists(args[0]) {
		return nil, fmt.Errorf("%w: %s", registry.ErrUnknownScenario, args[0])
	}
	return args[:1], nil
}

// simulateOne runs a single scenario until its tick limit. Every call owns
// its own walker, so runs share nothing.
func simulateOne(ctx context.Context, logger *log.Logger, id string, cfg core.RuntimeConfig) (simulation, error) {
	sc, err := registry.Create(id)
	if err != nil {
		return simulation{}, err
	}
	w, ok := sc.(*sim.Walker)
	if !ok {
		return simulation{}, fmt.Errorf("scenario %s cannot run headless", id)
	}

	start := time.Now()
	w.Reset(cfg)
	w.SetAutopilot(!flagNoAutopilot)
	logger.Info("run started", "mode", w.Mode(), "seed", cfg.Seed)

	idle := core.NewInputFrame()
	for !w.State().Finished {
		if err := ctx.Err(); err != nil {
			return simulation{}, err
		}
		w.Step(idle)
		if logger.GetLevel() <= log.DebugLevel {
			snap := w.Snapshot()
			logger.Debug("tick",
				"tick", snap.Tick,
				"cell", fmt.Sprintf("%d,%d", snap.CellX, snap.CellY),
				"heading", snap.Heading,
				"agent", snap.Agent,
				"pending", snap.Pending,
			)
		}
	}

	res := simulation{ID: uuid.New(), Summary: w.Summary(), Elapsed: time.Since(start)}
	logger.Info("run finished",
		"run", res.ID,
		"ticks", res.Summary.Stats.Ticks,
		"distance", fmt.Sprintf("%.2f", res.Summary.Stats.Distance),
		"turns", res.Summary.Stats.Turns,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// saveSimulations records results sequentially on a single connection.
func saveSimulations(logger *log.Logger, results []simulation) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "error", err)
		return
	}
	defer store.Close()

	for _, r := range results {
		if _, err := store.SaveRun(storage.RunFromSummary(r.ID, r.Summary)); err != nil {
			logger.Warn("could not save run", "scenario", r.Summary.Scenario, "error", err)
		}
	}
}

func printSimulations(results []simulation) {
	fmt.Println()
	fmt.Printf("  %-14s  %-6s  %-8s  %-8s  %-9s  %-6s  %-7s  %s\n",
		"Scenario", "Mode", "Run", "Ticks", "Distance", "Turns", "Final", "Settled")
	for _, r := range results {
		s := r.Summary
		settled := "no"
		if s.Settled {
			settled = "yes"
		}
		fmt.Printf("  %-14s  %-6s  %-8s  %-8d  %-9.2f  %-6d  %-7s  %s\n",
			s.Scenario, s.Mode, r.ID.String()[:8], s.Stats.Ticks, s.Stats.Distance,
			s.Stats.Turns, fmt.Sprintf("%d,%d", s.Final.X, s.Final.Y), settled)
	}
}
