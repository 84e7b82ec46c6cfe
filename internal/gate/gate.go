// Package gate implements the safety gate: a pure rule evaluation over
// (market state, preset, proposed trade) producing an allow/block decision.
package gate

import (
	"fmt"
	"math"

	"capital-shield/internal/domain"
)

// Evaluate applies all safety rules and collects every violation, so a
// blocked trade always carries the full set of reasons. Rules are reported
// in a fixed order: health, drawdown, regime.
//
// Evaluate is pure: no internal state, no I/O, safe for concurrent use.
// Malformed inputs return a wrapped domain.ErrValidation instead of being
// clamped; the gate's correctness depends on state never being out of range.
func Evaluate(state domain.MarketState, preset domain.Preset, trade domain.ProposedTrade) (domain.Decision, error) {
	if err := state.Validate(); err != nil {
		return domain.Decision{}, err
	}
	if err := preset.Validate(); err != nil {
		return domain.Decision{}, err
	}
	if err := trade.Validate(); err != nil {
		return domain.Decision{}, err
	}

	var triggered []domain.RuleViolation

	// Rule 1: health check. Fail-closed: a degraded or unknown health state
	// blocks, it is never silently allowed.
	if preset.HealthCheckEnabled && !state.HealthOK {
		triggered = append(triggered, domain.RuleViolation{
			Code:    domain.RuleHealthBlocked,
			Message: "system health check failed - trading disabled",
		})
	}

	// Rule 2: max drawdown.
	ddLimit := math.Abs(preset.MaxDrawdownThreshold)
	if state.DrawdownFraction > ddLimit {
		triggered = append(triggered, domain.RuleViolation{
			Code: domain.RuleDrawdownBreach,
			Message: fmt.Sprintf("max drawdown threshold exceeded (%.2f%% > %.2f%%)",
				state.DrawdownFraction*100, ddLimit*100),
		})
	}

	// Rule 3: regime guard. Only active in STRICT mode; PERMISSIVE never
	// hard-blocks on regime.
	if preset.RegimeGuardMode == domain.GuardModeStrict &&
		state.Regime == domain.RegimeBear && trade.Action == domain.ActionBuy {
		triggered = append(triggered, domain.RuleViolation{
			Code:    domain.RuleRegimeBlocked,
			Message: "bear regime - defensive mode (BUY blocked)",
		})
	}

	return domain.Decision{
		Allowed:        len(triggered) == 0,
		TriggeredRules: triggered,
	}, nil
}
