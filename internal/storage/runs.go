package storage

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/gridwalk/internal/sim"
)

// RunFromSummary converts a walker summary into a storable run.
func RunFromSummary(id uuid.UUID, s sim.RunSummary) Run {
	return Run{
		ID:           id,
		Scenario:     s.Scenario,
		Mode:         string(s.Mode),
		Seed:         s.Seed,
		Ticks:        s.Stats.Ticks,
		Distance:     s.Stats.Distance,
		BlockedTicks: s.Stats.BlockedTicks,
		Turns:        s.Stats.Turns,
		FinalX:       s.Final.X,
		FinalY:       s.Final.Y,
		Settled:      s.Settled,
	}
}

// RecordRun implements sim.RunRecorder.
// This adapter lets the platform record runs without a direct storage dependency.
func (s *Store) RecordRun(summary sim.RunSummary) error {
	_, err := s.SaveRun(RunFromSummary(uuid.New(), summary))
	return err
}

var _ sim.RunRecorder = (*Store)(nil)
