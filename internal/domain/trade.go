package domain

import (
	"fmt"
	"math"
)

// Action represents a proposed trade action.
type Action string

// Action constants.
const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ProposedTrade is a signal-engine proposal for one time step. It is
// produced once per step, consumed once, and not persisted independently
// of its ledger entry.
type ProposedTrade struct {
	AssetID          string
	Action           Action
	Timestamp        int64 // Unix ms
	SignalConfidence float64
}

// Validate checks the trade proposal invariants.
func (t *ProposedTrade) Validate() error {
	if t.AssetID == "" {
		return fmt.Errorf("%w: proposed trade has empty asset_id", ErrValidation)
	}
	switch t.Action {
	case ActionBuy, ActionSell, ActionHold:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrValidation, t.Action)
	}
	if math.IsNaN(t.SignalConfidence) || t.SignalConfidence < 0 || t.SignalConfidence > 1 {
		return fmt.Errorf("%w: signal_confidence %v outside [0, 1]", ErrValidation, t.SignalConfidence)
	}
	return nil
}

// RuleCode identifies a safety rule.
type RuleCode string

// Rule codes, in evaluation order.
const (
	RuleHealthBlocked  RuleCode = "HEALTH_BLOCKED"
	RuleDrawdownBreach RuleCode = "DD_BREACH"
	RuleRegimeBlocked  RuleCode = "REGIME_BLOCKED"
)

// RuleViolation is one triggered safety rule with its diagnostic message.
type RuleViolation struct {
	Code    RuleCode
	Message string
}

// Decision is the gate verdict for one proposed trade. Allowed is true
// iff TriggeredRules is empty; all violated rules are collected, not just
// the first.
type Decision struct {
	Allowed        bool
	TriggeredRules []RuleViolation
}

// Triggered reports whether the given rule code is present in the decision.
func (d Decision) Triggered(code RuleCode) bool {
	for _, r := range d.TriggeredRules {
		if r.Code == code {
			return true
		}
	}
	return false
}

// TradeLedgerEntry records one step's proposal, verdict and resulting
// equity. The ledger is append-only and owned by a single simulation run.
type TradeLedgerEntry struct {
	TradeID         string
	Proposed        ProposedTrade
	Decision        Decision
	ResultingEquity float64
}
