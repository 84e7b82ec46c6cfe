package memory

import (
	"context"
	"errors"
	"testing"

	"capital-shield/internal/domain"
	"capital-shield/internal/storage"
)

func testDataset(datasetID string) *domain.Dataset {
	return &domain.Dataset{
		DatasetID: datasetID,
		AssetID:   "BTC-USD",
		Candles: []domain.Candle{
			{Timestamp: 1000, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10},
			{Timestamp: 2000, Open: 100.5, High: 102, Low: 100, Close: 101.5, Volume: 12},
			{Timestamp: 3000, Open: 101.5, High: 103, Low: 101, Close: 102.5, Volume: 8},
		},
	}
}

func TestCandleStore_InsertAndGet(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertDataset(ctx, testDataset("ds1")); err != nil {
		t.Fatalf("InsertDataset failed: %v", err)
	}

	got, err := store.GetDataset(ctx, "ds1")
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if got.AssetID != "BTC-USD" {
		t.Errorf("AssetID mismatch: got %s", got.AssetID)
	}
	if len(got.Candles) != 3 {
		t.Fatalf("Candle count mismatch: got %d, want 3", len(got.Candles))
	}
	if got.Candles[1].Close != 101.5 {
		t.Errorf("Close mismatch: got %f, want 101.5", got.Candles[1].Close)
	}
}

func TestCandleStore_DuplicateKey(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertDataset(ctx, testDataset("ds1")); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertDataset(ctx, testDataset("ds1"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCandleStore_NotFound(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	_, err := store.GetDataset(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertDataset(ctx, testDataset("ds1")); err != nil {
		t.Fatalf("InsertDataset failed: %v", err)
	}

	candles, err := store.GetByTimeRange(ctx, "ds1", 1500, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("Candle count mismatch: got %d, want 2", len(candles))
	}
	if candles[0].Timestamp != 2000 {
		t.Errorf("First timestamp mismatch: got %d, want 2000", candles[0].Timestamp)
	}
}

func TestCandleStore_ReturnsCopy(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertDataset(ctx, testDataset("ds1")); err != nil {
		t.Fatalf("InsertDataset failed: %v", err)
	}

	got, err := store.GetDataset(ctx, "ds1")
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	got.Candles[0].Close = -1

	again, err := store.GetDataset(ctx, "ds1")
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if again.Candles[0].Close != 100.5 {
		t.Errorf("Stored data mutated through returned copy: got %f", again.Candles[0].Close)
	}
}
