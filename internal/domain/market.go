package domain

import (
	"fmt"
	"math"
)

// Regime is a coarse market-trend classification.
type Regime string

// Regime constants.
const (
	RegimeBull     Regime = "BULL"
	RegimeBear     Regime = "BEAR"
	RegimeSideways Regime = "SIDEWAYS"
)

// MarketState is the per-asset rolling state the safety gate evaluates
// against. It is owned by exactly one simulation run and mutated once
// per time step.
type MarketState struct {
	AssetID          string
	PeakEquity       float64
	CurrentEquity    float64
	DrawdownFraction float64 // in [0, 1]
	Regime           Regime
	HealthOK         bool
}

// Validate checks the gate-facing invariants. The gate refuses to evaluate
// out-of-range state rather than clamping it: a drawdown outside [0, 1]
// means the upstream equity accounting is corrupted.
func (s *MarketState) Validate() error {
	if s.AssetID == "" {
		return fmt.Errorf("%w: market state has empty asset_id", ErrValidation)
	}
	if math.IsNaN(s.DrawdownFraction) || s.DrawdownFraction < 0 || s.DrawdownFraction > 1 {
		return fmt.Errorf("%w: drawdown_fraction %v outside [0, 1]", ErrValidation, s.DrawdownFraction)
	}
	if math.IsNaN(s.CurrentEquity) || math.IsInf(s.CurrentEquity, 0) {
		return fmt.Errorf("%w: non-finite current_equity", ErrValidation)
	}
	if math.IsNaN(s.PeakEquity) || math.IsInf(s.PeakEquity, 0) {
		return fmt.Errorf("%w: non-finite peak_equity", ErrValidation)
	}
	switch s.Regime {
	case RegimeBull, RegimeBear, RegimeSideways:
	default:
		return fmt.Errorf("%w: unknown regime %q", ErrValidation, s.Regime)
	}
	return nil
}
