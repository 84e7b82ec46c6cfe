package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capital-shield/internal/domain"
	"capital-shield/internal/storage"
)

func sampleResult(mode domain.Mode) *domain.SimulationResult {
	return &domain.SimulationResult{
		PresetName:     "BALANCED",
		DatasetID:      "crash-2024",
		Mode:           mode,
		InitialEquity:  100000,
		TerminalEquity: 92000,
		MaxDrawdown:    0.11,
		TradeCount:     3,
		BlockedCount:   1,
		SurvivalScore:  0.675,
		Ledger: []domain.TradeLedgerEntry{
			{
				TradeID: "trade-0-" + string(mode),
				Proposed: domain.ProposedTrade{
					AssetID: "BTC-USD", Action: domain.ActionBuy, Timestamp: 1000, SignalConfidence: 0.85,
				},
				Decision:        domain.Decision{Allowed: true},
				ResultingEquity: 100000,
			},
			{
				TradeID: "trade-1-" + string(mode),
				Proposed: domain.ProposedTrade{
					AssetID: "BTC-USD", Action: domain.ActionBuy, Timestamp: 2000, SignalConfidence: 0.80,
				},
				Decision: domain.Decision{
					Allowed: false,
					TriggeredRules: []domain.RuleViolation{
						{Code: domain.RuleDrawdownBreach, Message: "drawdown 0.11 exceeds threshold 0.10"},
						{Code: domain.RuleRegimeBlocked, Message: "BUY blocked in BEAR regime"},
					},
				},
				ResultingEquity: 92000,
			},
		},
	}
}

func TestSimulationResultStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSimulationResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "run1", sampleResult(domain.ModeShielded)))

	got, err := store.GetByID(ctx, "run1")
	require.NoError(t, err)

	assert.Equal(t, "crash-2024", got.DatasetID)
	assert.Equal(t, domain.ModeShielded, got.Mode)
	assert.InDelta(t, 0.675, got.SurvivalScore, 1e-9)
	require.Len(t, got.Ledger, 2)

	entry := got.Ledger[1]
	assert.False(t, entry.Decision.Allowed)
	require.Len(t, entry.Decision.TriggeredRules, 2)
	assert.Equal(t, domain.RuleDrawdownBreach, entry.Decision.TriggeredRules[0].Code)
	assert.Equal(t, "BUY blocked in BEAR regime", entry.Decision.TriggeredRules[1].Message)
}

func TestSimulationResultStore_DuplicateRun(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSimulationResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "run1", sampleResult(domain.ModeBaseline)))

	err := store.Insert(ctx, "run1", sampleResult(domain.ModeBaseline))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSimulationResultStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSimulationResultStore(pool)

	_, err := store.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSimulationResultStore_GetByDatasetPreset(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSimulationResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "run-baseline", sampleResult(domain.ModeBaseline)))
	require.NoError(t, store.Insert(ctx, "run-shielded", sampleResult(domain.ModeShielded)))

	runs, err := store.GetByDatasetPreset(ctx, "crash-2024", "BALANCED")
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, domain.ModeBaseline, runs[0].Mode)
	assert.Equal(t, domain.ModeShielded, runs[1].Mode)
	assert.Len(t, runs[0].Ledger, 2)
}

func TestSimulationResultStore_LedgerAtomicity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSimulationResultStore(pool)
	ctx := context.Background()

	// Duplicate trade IDs inside one run must roll back the whole insert.
	bad := sampleResult(domain.ModeShielded)
	bad.Ledger[1].TradeID = bad.Ledger[0].TradeID

	err := store.Insert(ctx, "run-bad", bad)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "run-bad")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
