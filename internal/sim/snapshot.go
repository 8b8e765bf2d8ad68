package sim

// Snapshot captures the walker state for determinism testing and replay.
type Snapshot struct {
	Tick      uint64
	Mode      Mode
	CellX     int
	CellY     int
	PosX      float64
	PosY      float64
	PosZ      float64
	Heading   string
	Agent     string // Agent state name
	Pending   string // Buffered turn, empty when none
	Autopilot bool
	Stats     Stats
}

// Snapshot returns the current walker snapshot.
func (w *Walker) Snapshot() Snapshot {
	cell := w.Cell()
	pending := ""
	if w.hasPending {
		pending = w.pending.String()
	}
	return Snapshot{
		Tick:      w.stats.Ticks,
		Mode:      w.mode,
		CellX:     cell.X,
		CellY:     cell.Y,
		PosX:      w.pos.X(),
		PosY:      w.pos.Y(),
		PosZ:      w.pos.Z(),
		Heading:   w.agent.Heading().String(),
		Agent:     w.agent.State().String(),
		Pending:   pending,
		Autopilot: w.autopilot,
		Stats:     w.stats,
	}
}
