// Package config resolves risk presets and process configuration.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"capital-shield/internal/domain"
)

// ErrUnknownPreset is returned when a requested preset name is not registered.
var ErrUnknownPreset = errors.New("unknown preset")

// Registry maps preset names to their definitions. Lookup is
// case-insensitive; registered names keep their canonical spelling.
type Registry struct {
	presets map[string]domain.Preset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]domain.Preset)}
}

// DefaultRegistry returns a registry with the three built-in presets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(domain.PresetConservative)
	r.Register(domain.PresetBalanced)
	r.Register(domain.PresetAggressive)
	return r
}

// Register adds or replaces a preset under its name.
func (r *Registry) Register(p domain.Preset) {
	r.presets[strings.ToUpper(p.Name)] = p
}

// Get resolves a preset by name, case-insensitively.
func (r *Registry) Get(name string) (domain.Preset, error) {
	p, ok := r.presets[strings.ToUpper(name)]
	if !ok {
		return domain.Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p, nil
}

// GetAll resolves a comma-separated preset list. An empty list resolves to
// every registered preset in name order.
func (r *Registry) GetAll(names string) ([]domain.Preset, error) {
	if strings.TrimSpace(names) == "" {
		out := make([]domain.Preset, 0, len(r.presets))
		for _, name := range r.Names() {
			p, _ := r.Get(name)
			out = append(out, p)
		}
		return out, nil
	}

	var out []domain.Preset
	for _, name := range strings.Split(names, ",") {
		p, err := r.Get(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Names returns the registered preset names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for _, p := range r.presets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
