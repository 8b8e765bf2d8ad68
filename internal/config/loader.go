package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSandbox loads the sandbox configuration.
// Search order: customPath -> ~/.gridwalk/configs/sandbox.yaml -> ./configs/sandbox.yaml -> embedded default
// Files only need to name the fields they change; the rest keep their defaults.
func LoadSandbox(customPath string) (SandboxConfig, error) {
	cfg := DefaultSandboxConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(ExpandHome(customPath))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("sandbox.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, cfg.Validate()
			}
			cfg = DefaultSandboxConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "sandbox.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, cfg.Validate()
		}
		cfg = DefaultSandboxConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultSandboxYAML, &cfg); err != nil {
		return DefaultSandboxConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ApplyPreset sets the speed scale from a named preset.
func ApplyPreset(cfg *SandboxConfig, preset SpeedPreset) error {
	scale, ok := ScaleForPreset(preset)
	if !ok {
		return fmt.Errorf("%w: unknown speed preset %q", ErrInvalidConfig, preset)
	}
	cfg.Agent.SpeedScale = scale
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gridwalk", "configs", filename)
}
