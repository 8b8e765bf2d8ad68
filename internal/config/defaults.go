package config

import (
	_ "embed"
)

//go:embed defaults/sandbox.yaml
var defaultSandboxYAML []byte

// DefaultSandboxConfig returns the default sandbox configuration.
func DefaultSandboxConfig() SandboxConfig {
	return SandboxConfig{
		Agent: AgentConfig{
			SpeedScale: 1.0,
			Mode:       "",
			Autopilot:  false,
		},
		Simulation: SimulationConfig{
			TickRate: 60,
			MaxTicks: 1800, // 30 seconds at 60 ticks per second
		},
		Levels: LevelsConfig{
			Dir: "~/.gridwalk/levels",
		},
		Storage: StorageConfig{
			RecordRuns: true,
		},
	}
}

// DefaultYAML returns the embedded default sandbox YAML.
func DefaultYAML() []byte {
	return defaultSandboxYAML
}
