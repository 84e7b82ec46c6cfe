package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"capital-shield/internal/domain"
)

// presetFile is the YAML schema of a preset definitions file.
type presetFile struct {
	Presets []presetEntry `yaml:"presets"`
}

type presetEntry struct {
	Name                 string  `yaml:"name"`
	MaxDrawdownThreshold float64 `yaml:"max_drawdown_threshold"`
	RegimeGuardMode      string  `yaml:"regime_guard_mode"`
	HealthCheckEnabled   *bool   `yaml:"health_check_enabled"`
	Description          string  `yaml:"description"`
}

// LoadPresetFile reads custom preset definitions from a YAML file and
// registers them on top of the registry. Every entry is validated; the
// health check defaults to enabled when omitted.
func LoadPresetFile(path string, registry *Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset file: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse preset file %s: %w", path, err)
	}

	for i, entry := range file.Presets {
		health := true
		if entry.HealthCheckEnabled != nil {
			health = *entry.HealthCheckEnabled
		}
		p := domain.Preset{
			Name:                 entry.Name,
			MaxDrawdownThreshold: entry.MaxDrawdownThreshold,
			RegimeGuardMode:      domain.GuardMode(entry.RegimeGuardMode),
			HealthCheckEnabled:   health,
			Description:          entry.Description,
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("preset file %s entry %d (%s): %w", path, i, entry.Name, err)
		}
		registry.Register(p)
	}

	return nil
}
