package domain

import "fmt"

// GuardMode controls whether the regime guard rule may hard-block trades.
type GuardMode string

// Guard mode constants.
const (
	GuardModeStrict     GuardMode = "STRICT"
	GuardModePermissive GuardMode = "PERMISSIVE"
)

// Preset is a named, immutable bundle of risk thresholds and guard modes.
// Presets are resolved by name at setup time; an unknown name is a fatal
// configuration error, never a per-trade error.
type Preset struct {
	Name                 string
	MaxDrawdownThreshold float64 // negative fraction, e.g. -0.10 for 10%
	RegimeGuardMode      GuardMode
	HealthCheckEnabled   bool
	Description          string
}

// Predefined presets, ordered from most to least protective.
var (
	PresetConservative = Preset{
		Name:                 "CONSERVATIVE",
		MaxDrawdownThreshold: -0.05,
		RegimeGuardMode:      GuardModeStrict,
		HealthCheckEnabled:   true,
		Description:          "Maximum capital protection. Low drawdown threshold, strict regime guard.",
	}

	PresetBalanced = Preset{
		Name:                 "BALANCED",
		MaxDrawdownThreshold: -0.10,
		RegimeGuardMode:      GuardModeStrict,
		HealthCheckEnabled:   true,
		Description:          "Standard protection. Moderate drawdown threshold, strict regime guard.",
	}

	PresetAggressive = Preset{
		Name:                 "AGGRESSIVE",
		MaxDrawdownThreshold: -0.15,
		RegimeGuardMode:      GuardModePermissive,
		HealthCheckEnabled:   true,
		Description:          "Minimal protection. High drawdown threshold, permissive regime guard.",
	}
)

// Validate checks preset invariants: non-empty name, negative drawdown
// threshold no lower than -1, known guard mode.
func (p Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: preset has empty name", ErrValidation)
	}
	if p.MaxDrawdownThreshold >= 0 || p.MaxDrawdownThreshold < -1 {
		return fmt.Errorf("%w: preset %s: max_drawdown_threshold %v must be in [-1, 0)",
			ErrValidation, p.Name, p.MaxDrawdownThreshold)
	}
	switch p.RegimeGuardMode {
	case GuardModeStrict, GuardModePermissive:
	default:
		return fmt.Errorf("%w: preset %s: unknown regime_guard_mode %q",
			ErrValidation, p.Name, p.RegimeGuardMode)
	}
	return nil
}
