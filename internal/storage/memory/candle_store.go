// Package memory provides in-memory storage implementations for tests and
// single-process runs.
package memory

import (
	"context"
	"sync"

	"capital-shield/internal/domain"
	"capital-shield/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu       sync.RWMutex
	datasets map[string]*domain.Dataset
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{datasets: make(map[string]*domain.Dataset)}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertDataset adds all candles of a dataset. Fails on duplicate dataset ID.
func (s *CandleStore) InsertDataset(_ context.Context, ds *domain.Dataset) error {
	if ds == nil || ds.DatasetID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.datasets[ds.DatasetID]; exists {
		return storage.ErrDuplicateKey
	}

	copied := &domain.Dataset{
		DatasetID: ds.DatasetID,
		AssetID:   ds.AssetID,
		Candles:   append([]domain.Candle(nil), ds.Candles...),
	}
	s.datasets[ds.DatasetID] = copied
	return nil
}

// GetDataset retrieves a full dataset.
func (s *CandleStore) GetDataset(_ context.Context, datasetID string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &domain.Dataset{
		DatasetID: ds.DatasetID,
		AssetID:   ds.AssetID,
		Candles:   append([]domain.Candle(nil), ds.Candles...),
	}, nil
}

// GetByTimeRange retrieves candles within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(_ context.Context, datasetID string, start, end int64) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	var result []domain.Candle
	for _, c := range ds.Candles {
		if c.Timestamp >= start && c.Timestamp <= end {
			result = append(result, c)
		}
	}
	return result, nil
}
