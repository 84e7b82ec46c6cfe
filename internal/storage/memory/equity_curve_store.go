package memory

import (
	"context"
	"sync"

	"capital-shield/internal/domain"
	"capital-shield/internal/storage"
)

// EquityCurveStore is an in-memory implementation of storage.EquityCurveStore.
type EquityCurveStore struct {
	mu     sync.RWMutex
	curves map[string][]domain.EquityPoint
}

// NewEquityCurveStore creates a new in-memory equity curve store.
func NewEquityCurveStore() *EquityCurveStore {
	return &EquityCurveStore{curves: make(map[string][]domain.EquityPoint)}
}

// Compile-time interface check.
var _ storage.EquityCurveStore = (*EquityCurveStore)(nil)

// InsertCurve adds all points of a run's equity curve. Fails on duplicate
// run ID.
func (s *EquityCurveStore) InsertCurve(_ context.Context, runID string, points []domain.EquityPoint) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.curves[runID]; exists {
		return storage.ErrDuplicateKey
	}
	s.curves[runID] = append([]domain.EquityPoint(nil), points...)
	return nil
}

// GetByRunID retrieves a run's curve, ordered by timestamp ASC.
func (s *EquityCurveStore) GetByRunID(_ context.Context, runID string) ([]domain.EquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	curve, ok := s.curves[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]domain.EquityPoint(nil), curve...), nil
}
