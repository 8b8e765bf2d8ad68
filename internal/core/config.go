package core

// RuntimeConfig contains configuration passed to scenarios at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic runs
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// ScenarioState is the status a scenario reports to the platform after
// every tick.
type ScenarioState struct {
	Tick     uint64 // Ticks simulated since Reset
	Moving   bool   // The agent changed position this tick
	Settled  bool   // The agent rests against a blocked cell
	Paused   bool
	Finished bool // Tick limit reached; no further motion
}

// StepResult is returned by Scenario.Step after each tick.
type StepResult struct {
	State ScenarioState
}
