// Package config provides YAML-based sandbox configuration loading and speed
// presets for the gridwalk platform.
package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// SandboxConfig contains all configuration for the sandbox.
type SandboxConfig struct {
	Agent      AgentConfig      `yaml:"agent"`
	Simulation SimulationConfig `yaml:"simulation"`
	Levels     LevelsConfig     `yaml:"levels"`
	Storage    StorageConfig    `yaml:"storage"`
}

// AgentConfig defines agent overrides applied to every level.
type AgentConfig struct {
	SpeedScale float64 `yaml:"speed_scale"` // Multiplies each level's speed
	Mode       string  `yaml:"mode"`        // "step", "center", "budget"; empty keeps the level mode
	Autopilot  bool    `yaml:"autopilot"`
}

// SimulationConfig defines the tick loop parameters.
type SimulationConfig struct {
	TickRate int    `yaml:"tick_rate"` // Ticks per second
	MaxTicks uint64 `yaml:"max_ticks"` // Headless run length; 0 means unlimited in play
}

// LevelsConfig defines where extra levels come from.
type LevelsConfig struct {
	Dir      string  `yaml:"dir"`       // Directory scanned for *.yaml levels
	CellSize float64 `yaml:"cell_size"` // Overrides each level's cell size when positive
}

// StorageConfig defines run recording.
type StorageConfig struct {
	RecordRuns bool `yaml:"record_runs"`
}

// SpeedPreset represents a named speed setting.
type SpeedPreset string

const (
	SpeedSlow   SpeedPreset = "slow"
	SpeedNormal SpeedPreset = "normal"
	SpeedFast   SpeedPreset = "fast"
)

// ScaleForPreset returns the speed scale for a preset.
func ScaleForPreset(preset SpeedPreset) (float64, bool) {
	switch preset {
	case SpeedSlow:
		return 0.5, true
	case SpeedNormal:
		return 1.0, true
	case SpeedFast:
		return 2.0, true
	default:
		return 0, false
	}
}

// Validate reports the first invalid field.
func (c SandboxConfig) Validate() error {
	switch {
	case !finite(c.Agent.SpeedScale) || c.Agent.SpeedScale <= 0:
		return fmt.Errorf("%w: agent.speed_scale must be positive, got %v", ErrInvalidConfig, c.Agent.SpeedScale)
	case c.Simulation.TickRate <= 0 || c.Simulation.TickRate > 240:
		return fmt.Errorf("%w: simulation.tick_rate must be in 1..240, got %d", ErrInvalidConfig, c.Simulation.TickRate)
	case !finite(c.Levels.CellSize) || c.Levels.CellSize < 0:
		return fmt.Errorf("%w: levels.cell_size must not be negative, got %v", ErrInvalidConfig, c.Levels.CellSize)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
