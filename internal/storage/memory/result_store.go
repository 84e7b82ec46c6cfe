package memory

import (
	"context"
	"sort"
	"sync"

	"capital-shield/internal/domain"
	"capital-shield/internal/storage"
)

// SimulationResultStore is an in-memory implementation of
// storage.SimulationResultStore.
type SimulationResultStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.SimulationResult
}

// NewSimulationResultStore creates a new in-memory result store.
func NewSimulationResultStore() *SimulationResultStore {
	return &SimulationResultStore{runs: make(map[string]*domain.SimulationResult)}
}

// Compile-time interface check.
var _ storage.SimulationResultStore = (*SimulationResultStore)(nil)

// Insert adds a completed run. Returns ErrDuplicateKey if run_id exists.
func (s *SimulationResultStore) Insert(_ context.Context, runID string, result *domain.SimulationResult) error {
	if runID == "" || result == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return storage.ErrDuplicateKey
	}
	s.runs[runID] = copyResult(result)
	return nil
}

// GetByID retrieves a run with its full ledger.
func (s *SimulationResultStore) GetByID(_ context.Context, runID string) (*domain.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyResult(r), nil
}

// GetByDatasetPreset retrieves all runs for a dataset/preset combination,
// ordered by mode.
func (s *SimulationResultStore) GetByDatasetPreset(_ context.Context, datasetID, presetName string) ([]*domain.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SimulationResult
	for _, r := range s.runs {
		if r.DatasetID == datasetID && r.PresetName == presetName {
			result = append(result, copyResult(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Mode < result[j].Mode
	})
	return result, nil
}

// copyResult deep-copies a result so callers never share ledger slices.
func copyResult(r *domain.SimulationResult) *domain.SimulationResult {
	out := *r
	out.Ledger = append([]domain.TradeLedgerEntry(nil), r.Ledger...)
	out.EquityCurve = append([]domain.EquityPoint(nil), r.EquityCurve...)
	for i, entry := range out.Ledger {
		out.Ledger[i].Decision.TriggeredRules = append([]domain.RuleViolation(nil), entry.Decision.TriggeredRules...)
	}
	return &out
}
