package storage

import (
	"context"

	"capital-shield/internal/domain"
)

// CandleStore provides access to candle timeseries storage.
type CandleStore interface {
	// InsertDataset adds all candles of a dataset. Fails the entire batch
	// on duplicate (dataset_id, timestamp).
	InsertDataset(ctx context.Context, ds *domain.Dataset) error

	// GetDataset retrieves a full dataset, candles ordered by timestamp ASC.
	// Returns ErrNotFound if no candles exist for the ID.
	GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error)

	// GetByTimeRange retrieves a dataset's candles within [start, end]
	// (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, datasetID string, start, end int64) ([]domain.Candle, error)
}

// SimulationResultStore provides access to simulation run storage. A run's
// summary and its trade ledger are written atomically.
type SimulationResultStore interface {
	// Insert adds a completed run under its run ID. Returns ErrDuplicateKey
	// if run_id exists.
	Insert(ctx context.Context, runID string, result *domain.SimulationResult) error

	// GetByID retrieves a run with its full ledger. Returns ErrNotFound if
	// not exists. The equity curve is stored separately.
	GetByID(ctx context.Context, runID string) (*domain.SimulationResult, error)

	// GetByDatasetPreset retrieves all runs for a dataset/preset
	// combination, ordered by mode.
	GetByDatasetPreset(ctx context.Context, datasetID, presetName string) ([]*domain.SimulationResult, error)
}

// EquityCurveStore provides access to equity curve timeseries storage.
type EquityCurveStore interface {
	// InsertCurve adds all points of a run's equity curve. Fails the
	// entire batch on duplicate (run_id, timestamp).
	InsertCurve(ctx context.Context, runID string, points []domain.EquityPoint) error

	// GetByRunID retrieves a run's curve, ordered by timestamp ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.EquityPoint, error)
}
