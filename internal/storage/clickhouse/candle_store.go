package clickhouse

import (
	"context"
	"fmt"
	"time"

	"capital-shield/internal/domain"
	"capital-shield/internal/observability"
	"capital-shield/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertDataset adds all candles of a dataset. Fails the entire batch on
// duplicate (dataset_id, timestamp).
func (s *CandleStore) InsertDataset(ctx context.Context, ds *domain.Dataset) (err error) {
	defer func(start time.Time) {
		observability.RecordDBQuery("clickhouse", "insert_candles", time.Since(start).Seconds(), err)
	}(time.Now())

	if ds == nil || ds.DatasetID == "" {
		return storage.ErrInvalidInput
	}
	if len(ds.Candles) == 0 {
		return nil
	}

	// MergeTree does not enforce uniqueness, so duplicates are rejected
	// up front.
	exists, err := s.exists(ctx, ds.DatasetID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			dataset_id, asset_id, timestamp_ms, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range ds.Candles {
		err = batch.Append(
			ds.DatasetID, ds.AssetID, uint64(c.Timestamp),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetDataset retrieves a full dataset, candles ordered by timestamp ASC.
func (s *CandleStore) GetDataset(ctx context.Context, datasetID string) (result *domain.Dataset, err error) {
	defer func(start time.Time) {
		observability.RecordDBQuery("clickhouse", "get_dataset", time.Since(start).Seconds(), err)
	}(time.Now())

	query := `
		SELECT asset_id, timestamp_ms, open, high, low, close, volume
		FROM candles
		WHERE dataset_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	ds := &domain.Dataset{DatasetID: datasetID}
	for rows.Next() {
		var c domain.Candle
		var assetID string
		var ts uint64

		if err := rows.Scan(&assetID, &ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}
		c.Timestamp = int64(ts)
		ds.AssetID = assetID
		ds.Candles = append(ds.Candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	if len(ds.Candles) == 0 {
		return nil, storage.ErrNotFound
	}
	return ds, nil
}

// GetByTimeRange retrieves a dataset's candles within [start, end]
// (inclusive), ordered by timestamp ASC.
func (s *CandleStore) GetByTimeRange(ctx context.Context, datasetID string, start, end int64) ([]domain.Candle, error) {
	query := `
		SELECT timestamp_ms, open, high, low, close, volume
		FROM candles
		WHERE dataset_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, datasetID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	var candles []domain.Candle
	for rows.Next() {
		var c domain.Candle
		var ts uint64
		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}
		c.Timestamp = int64(ts)
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}

// exists checks if any candles are stored under the dataset ID.
func (s *CandleStore) exists(ctx context.Context, datasetID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM candles WHERE dataset_id = ?`, datasetID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
