package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridwalk/internal/platform/tui"
	"github.com/vovakirdan/gridwalk/internal/registry"
	"github.com/vovakirdan/gridwalk/internal/storage"
)

var (
	flagLimit int
	flagClear bool
	flagBoard bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [scenario]",
	Short: "Show recorded runs",
	Long: `Display recorded runs for a scenario, or per-scenario statistics when
no scenario is given.

Examples:
  gridwalk runs
  gridwalk runs corridor --limit 20
  gridwalk runs corridor --clear
  gridwalk runs --board`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete recorded runs (all when no scenario is given)")
	runsCmd.Flags().BoolVar(&flagBoard, "board", false, "Open the interactive runs board")
}

func runRuns(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	scenario := ""
	if len(args) > 0 {
		scenario = args[0]
	}

	switch {
	case flagClear:
		if err := store.ClearRuns(scenario); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Runs cleared.")
	case flagBoard:
		cfg := terminalConfig()
		if _, err := tui.RunRunsBoard(store, cfg.ScreenW, cfg.ScreenH); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case scenario == "":
		printAllStats(store)
	default:
		printRuns(store, scenario)
	}
}

func printAllStats(store *storage.Store) {
	stats, err := store.GetAllScenarioStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}
	if len(stats) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-14s  %-5s  %-10s  %-10s  %-9s  %-7s  %s\n",
		"Scenario", "Runs", "Best", "Total", "Avg ticks", "Settled", "Last run")
	for _, id := range ids {
		s := stats[id]
		fmt.Printf("  %-14s  %-5d  %-10.2f  %-10.2f  %-9.0f  %-7d  %s\n",
			s.Scenario, s.Runs, s.BestDistance, s.TotalDistance, s.AvgTicks,
			s.SettledRuns, s.LastRun.Format("2006-01-02 15:04"))
	}
}

func printRuns(store *storage.Store, scenario string) {
	title := scenario
	if sc, err := registry.Create(scenario); err == nil {
		title = sc.Title()
	}

	runs, err := store.RecentRuns(scenario, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Runs - %s\n", title)
	fmt.Println()
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'gridwalk simulate %s' to record one.\n", scenario)
		return
	}

	fmt.Printf("  %-8s  %-6s  %-7s  %-9s  %-5s  %-7s  %-7s  %s\n",
		"Run", "Mode", "Ticks", "Distance", "Turns", "Final", "Settled", "Date")
	for _, r := range runs {
		settled := "no"
		if r.Settled {
			settled = "yes"
		}
		fmt.Printf("  %-8s  %-6s  %-7d  %-9.2f  %-5d  %-7s  %-7s  %s\n",
			r.ID.String()[:8], r.Mode, r.Ticks, r.Distance, r.Turns,
			fmt.Sprintf("%d,%d", r.FinalX, r.FinalY), settled, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetScenarioStats(scenario); err == nil && stats != nil {
		fmt.Println()
		fmt.Printf("Best distance: %.2f over %d runs\n", stats.BestDistance, stats.Runs)
	}
}
