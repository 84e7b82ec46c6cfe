package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capital-shield/internal/domain"
	"capital-shield/internal/storage"
)

func sampleDataset(datasetID string) *domain.Dataset {
	return &domain.Dataset{
		DatasetID: datasetID,
		AssetID:   "ETH-USD",
		Candles: []domain.Candle{
			{Timestamp: 1000, Open: 100, High: 102, Low: 99, Close: 101, Volume: 50},
			{Timestamp: 2000, Open: 101, High: 104, Low: 100, Close: 103, Volume: 60},
			{Timestamp: 3000, Open: 103, High: 103, Low: 98, Close: 99, Volume: 70},
		},
	}
}

func TestCandleStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertDataset(ctx, sampleDataset("ds1")))

	got, err := store.GetDataset(ctx, "ds1")
	require.NoError(t, err)

	assert.Equal(t, "ETH-USD", got.AssetID)
	require.Len(t, got.Candles, 3)
	assert.Equal(t, int64(2000), got.Candles[1].Timestamp)
	assert.InDelta(t, 103.0, got.Candles[1].Close, 1e-9)
}

func TestCandleStore_Duplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertDataset(ctx, sampleDataset("ds1")))

	err := store.InsertDataset(ctx, sampleDataset("ds1"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCandleStore_NotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)

	_, err := store.GetDataset(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertDataset(ctx, sampleDataset("ds1")))

	candles, err := store.GetByTimeRange(ctx, "ds1", 1500, 3000)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(2000), candles[0].Timestamp)
}
