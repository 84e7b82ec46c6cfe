// Package validation fans simulation pairs out over the cartesian product
// of datasets and presets and aggregates the per-combination comparisons
// into a single report.
package validation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"capital-shield/internal/domain"
	"capital-shield/internal/observability"
	"capital-shield/internal/simulation"
)

// Structural batch errors. A batch with nothing to run fails up front;
// per-combination failures are recorded in the report instead.
var (
	ErrNoDatasets = errors.New("no datasets to validate")
	ErrNoPresets  = errors.New("no presets to validate")
)

// Config holds batch parameters.
type Config struct {
	// Simulation is the shared per-run configuration.
	Simulation simulation.Config

	// MaxConcurrent bounds the number of combinations in flight.
	MaxConcurrent int

	// CombinationTimeout bounds each baseline+shielded pair. Zero means
	// no per-combination deadline.
	CombinationTimeout time.Duration
}

// DefaultConfig returns the default batch parameters.
func DefaultConfig() Config {
	return Config{
		Simulation:         simulation.DefaultConfig(),
		MaxConcurrent:      4,
		CombinationTimeout: 2 * time.Minute,
	}
}

// Validator runs the multi-dataset validation batch.
type Validator struct {
	cfg    Config
	logger *log.Logger
}

// NewValidator creates a validator.
func NewValidator(cfg Config, logger *log.Logger) *Validator {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	return &Validator{cfg: cfg, logger: logger}
}

// Validate runs every (dataset, preset) combination and returns the
// comparison report. One failed combination never aborts the rest; the
// failure is recorded and the batch continues. Rows are ordered by dataset
// ID, then preset name, regardless of completion order.
func (v *Validator) Validate(ctx context.Context, datasets []*domain.Dataset, presets []domain.Preset) (*domain.ComparisonReport, error) {
	if len(datasets) == 0 {
		return nil, ErrNoDatasets
	}
	if len(presets) == 0 {
		return nil, ErrNoPresets
	}

	runner := simulation.NewRunner(v.cfg.Simulation, v.logger)

	var mu sync.Mutex
	var rows []domain.ComparisonRow
	var failures []domain.FailedCombination

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.MaxConcurrent)

	for _, ds := range datasets {
		for _, preset := range presets {
			ds, preset := ds, preset
			g.Go(func() error {
				observability.DefaultMetrics.CombinationsInFlight.Inc()
				row, err := v.runCombination(ctx, runner, ds, preset)
				observability.DefaultMetrics.CombinationsInFlight.Dec()

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					observability.RecordBatchCombination("failed")
					if v.logger != nil {
						v.logger.Printf("combination %s/%s failed: %v", ds.DatasetID, preset.Name, err)
					}
					failures = append(failures, domain.FailedCombination{
						DatasetID:  ds.DatasetID,
						PresetName: preset.Name,
						Error:      err.Error(),
					})
					return nil
				}
				observability.RecordBatchCombination("completed")
				rows = append(rows, row)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DatasetID != rows[j].DatasetID {
			return rows[i].DatasetID < rows[j].DatasetID
		}
		return rows[i].PresetName < rows[j].PresetName
	})
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].DatasetID != failures[j].DatasetID {
			return failures[i].DatasetID < failures[j].DatasetID
		}
		return failures[i].PresetName < failures[j].PresetName
	})

	return &domain.ComparisonReport{
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
		Failures:    failures,
	}, nil
}

// runCombination executes one baseline+shielded pair under the
// per-combination deadline and builds its comparison row.
func (v *Validator) runCombination(ctx context.Context, runner *simulation.Runner, ds *domain.Dataset, preset domain.Preset) (domain.ComparisonRow, error) {
	if v.cfg.CombinationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.CombinationTimeout)
		defer cancel()
	}

	if err := ds.Validate(); err != nil {
		return domain.ComparisonRow{}, fmt.Errorf("dataset: %w", err)
	}

	baseline, shielded, err := runner.RunPair(ctx, ds, preset)
	if err != nil {
		return domain.ComparisonRow{}, err
	}

	return Compare(baseline, shielded), nil
}

// Compare builds the comparison row for one baseline/shielded pair.
func Compare(baseline, shielded *domain.SimulationResult) domain.ComparisonRow {
	return domain.ComparisonRow{
		DatasetID:          baseline.DatasetID,
		PresetName:         shielded.PresetName,
		Baseline:           baseline,
		Shielded:           shielded,
		TradeCountDelta:    shielded.TradeCount - baseline.TradeCount,
		BlockedCount:       shielded.BlockedCount,
		MaxDrawdownDelta:   shielded.MaxDrawdown - baseline.MaxDrawdown,
		SurvivalScoreDelta: shielded.SurvivalScore - baseline.SurvivalScore,
	}
}
