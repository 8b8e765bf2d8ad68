package sim

import "github.com/vovakirdan/gridwalk/internal/grid"

// RunSummary is the outcome of a walker session, ready to be recorded.
type RunSummary struct {
	Scenario string
	Mode     Mode
	Seed     int64
	Stats    Stats
	Final    grid.Cell
	Settled  bool
}

// RunRecorder persists run summaries.
type RunRecorder interface {
	RecordRun(s RunSummary) error
}

// Summary returns the run so far.
func (w *Walker) Summary() RunSummary {
	return RunSummary{
		Scenario: w.ID(),
		Mode:     w.mode,
		Seed:     w.cfg.Seed,
		Stats:    w.stats,
		Final:    w.Cell(),
		Settled:  w.state.Settled,
	}
}
