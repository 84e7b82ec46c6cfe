package engine

import (
	"context"
	"math/rand"

	"capital-shield/internal/domain"
)

// Trailing-return bands for the deterministic mock signal.
const (
	mockBuyThreshold  = 0.05
	mockSellThreshold = -0.05

	mockBuyConfidence  = 0.85
	mockSellConfidence = 0.80
	mockHoldConfidence = 0.60
)

// Mock is a seeded, fully deterministic signal engine: the same snapshot
// sequence always produces the identical trade sequence. The action depends
// only on the trailing return; the seed perturbs confidence by a small
// reproducible jitter and never changes the action, so baseline and shielded
// runs sharing a seed see the same signal stream.
type Mock struct {
	rng *rand.Rand
}

// NewMock creates a mock engine with the given seed.
func NewMock(seed int64) *Mock {
	return &Mock{rng: rand.New(rand.NewSource(seed))}
}

// Name returns the engine identifier.
func (m *Mock) Name() string { return "mock" }

// GenerateSignal derives the action from the return over the snapshot's
// trailing closes: above +5% BUY, below -5% SELL, otherwise HOLD.
func (m *Mock) GenerateSignal(_ context.Context, snap Snapshot) (domain.ProposedTrade, error) {
	var priceChange float64
	if len(snap.Closes) > 1 && snap.Closes[0] > 0 {
		priceChange = (snap.Closes[len(snap.Closes)-1] - snap.Closes[0]) / snap.Closes[0]
	}

	var action domain.Action
	var confidence float64
	switch {
	case priceChange > mockBuyThreshold:
		action = domain.ActionBuy
		confidence = mockBuyConfidence
	case priceChange < mockSellThreshold:
		action = domain.ActionSell
		confidence = mockSellConfidence
	default:
		action = domain.ActionHold
		confidence = mockHoldConfidence
	}

	// Seed-derived jitter, bounded to +/-0.05; consumed every call so the
	// stream stays aligned across runs regardless of action.
	jitter := (m.rng.Float64() - 0.5) * 0.1
	confidence += jitter
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return domain.ProposedTrade{
		AssetID:          snap.AssetID,
		Action:           action,
		Timestamp:        snap.Timestamp,
		SignalConfidence: confidence,
	}, nil
}
