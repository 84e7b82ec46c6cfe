package engine

import (
	"context"

	"capital-shield/internal/domain"
)

// Scripted replays a fixed action sequence, one action per call. Past the
// end of the script it emits HOLD. Crash-test scenarios use it to force
// specific action patterns (e.g. BUY pressure during a bear regime).
type Scripted struct {
	actions    []domain.Action
	constant   domain.Action
	confidence float64
	pos        int
}

// NewScripted creates a scripted engine. Confidence applies to every
// emitted trade.
func NewScripted(actions []domain.Action, confidence float64) *Scripted {
	return &Scripted{actions: actions, confidence: confidence}
}

// NewConstant creates a scripted engine that emits the same action forever.
func NewConstant(action domain.Action, confidence float64) *Scripted {
	return &Scripted{actions: nil, confidence: confidence, constant: action}
}

// Name returns the engine identifier.
func (s *Scripted) Name() string { return "scripted" }

// GenerateSignal returns the next scripted action.
func (s *Scripted) GenerateSignal(_ context.Context, snap Snapshot) (domain.ProposedTrade, error) {
	action := s.constant
	if action == "" {
		action = domain.ActionHold
	}
	if s.pos < len(s.actions) {
		action = s.actions[s.pos]
	}
	s.pos++

	return domain.ProposedTrade{
		AssetID:          snap.AssetID,
		Action:           action,
		Timestamp:        snap.Timestamp,
		SignalConfidence: s.confidence,
	}, nil
}
