package postgres

import (
	"context"
	"fmt"
	"time"

	"capital-shield/internal/domain"
	"capital-shield/internal/observability"
	"capital-shield/internal/storage"
)

// SimulationResultStore implements storage.SimulationResultStore using
// PostgreSQL. The run summary and its trade ledger are written in one
// transaction.
type SimulationResultStore struct {
	pool *Pool
}

// NewSimulationResultStore creates a new SimulationResultStore.
func NewSimulationResultStore(pool *Pool) *SimulationResultStore {
	return &SimulationResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SimulationResultStore = (*SimulationResultStore)(nil)

// Insert adds a completed run. Returns ErrDuplicateKey if run_id exists.
func (s *SimulationResultStore) Insert(ctx context.Context, runID string, result *domain.SimulationResult) (err error) {
	defer func(start time.Time) {
		observability.RecordDBQuery("postgres", "insert_run", time.Since(start).Seconds(), err)
	}(time.Now())

	if runID == "" || result == nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	runQuery := `
		INSERT INTO simulation_runs (
			run_id, dataset_id, preset, mode,
			initial_equity, terminal_equity, max_drawdown,
			trade_count, blocked_count, survival_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, runQuery,
		runID, result.DatasetID, result.PresetName, string(result.Mode),
		result.InitialEquity, result.TerminalEquity, result.MaxDrawdown,
		result.TradeCount, result.BlockedCount, result.SurvivalScore,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert simulation run: %w", err)
	}

	ledgerQuery := `
		INSERT INTO trade_ledger (
			trade_id, run_id, step, asset_id, action,
			signal_timestamp, signal_confidence,
			allowed, triggered_rules, rule_messages, resulting_equity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for step, entry := range result.Ledger {
		codes := make([]string, len(entry.Decision.TriggeredRules))
		messages := make([]string, len(entry.Decision.TriggeredRules))
		for i, v := range entry.Decision.TriggeredRules {
			codes[i] = string(v.Code)
			messages[i] = v.Message
		}

		_, err := tx.Exec(ctx, ledgerQuery,
			entry.TradeID, runID, step, entry.Proposed.AssetID, string(entry.Proposed.Action),
			entry.Proposed.Timestamp, entry.Proposed.SignalConfidence,
			entry.Decision.Allowed, codes, messages, entry.ResultingEquity,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert ledger entry %d: %w", step, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a run with its full ledger. Returns ErrNotFound if not
// exists.
func (s *SimulationResultStore) GetByID(ctx context.Context, runID string) (result *domain.SimulationResult, err error) {
	defer func(start time.Time) {
		observability.RecordDBQuery("postgres", "get_run", time.Since(start).Seconds(), err)
	}(time.Now())

	query := `
		SELECT dataset_id, preset, mode,
			initial_equity, terminal_equity, max_drawdown,
			trade_count, blocked_count, survival_score
		FROM simulation_runs
		WHERE run_id = $1
	`

	var r domain.SimulationResult
	var mode string
	err = s.pool.QueryRow(ctx, query, runID).Scan(
		&r.DatasetID, &r.PresetName, &mode,
		&r.InitialEquity, &r.TerminalEquity, &r.MaxDrawdown,
		&r.TradeCount, &r.BlockedCount, &r.SurvivalScore,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get simulation run by id: %w", err)
	}
	r.Mode = domain.Mode(mode)

	ledger, err := s.getLedger(ctx, runID)
	if err != nil {
		return nil, err
	}
	r.Ledger = ledger

	return &r, nil
}

// GetByDatasetPreset retrieves all runs for a dataset/preset combination,
// ordered by mode.
func (s *SimulationResultStore) GetByDatasetPreset(ctx context.Context, datasetID, presetName string) ([]*domain.SimulationResult, error) {
	query := `
		SELECT run_id
		FROM simulation_runs
		WHERE dataset_id = $1 AND preset = $2
		ORDER BY mode ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, datasetID, presetName)
	if err != nil {
		return nil, fmt.Errorf("get runs by dataset/preset: %w", err)
	}
	defer rows.Close()

	var runIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		runIDs = append(runIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run ids: %w", err)
	}

	results := make([]*domain.SimulationResult, 0, len(runIDs))
	for _, id := range runIDs {
		r, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// getLedger reads a run's ledger entries in step order.
func (s *SimulationResultStore) getLedger(ctx context.Context, runID string) ([]domain.TradeLedgerEntry, error) {
	query := `
		SELECT trade_id, asset_id, action,
			signal_timestamp, signal_confidence,
			allowed, triggered_rules, rule_messages, resulting_equity
		FROM trade_ledger
		WHERE run_id = $1
		ORDER BY step ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get trade ledger: %w", err)
	}
	defer rows.Close()

	var ledger []domain.TradeLedgerEntry
	for rows.Next() {
		var entry domain.TradeLedgerEntry
		var action string
		var codes, messages []string

		err := rows.Scan(
			&entry.TradeID, &entry.Proposed.AssetID, &action,
			&entry.Proposed.Timestamp, &entry.Proposed.SignalConfidence,
			&entry.Decision.Allowed, &codes, &messages, &entry.ResultingEquity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}

		entry.Proposed.Action = domain.Action(action)
		for i, code := range codes {
			v := domain.RuleViolation{Code: domain.RuleCode(code)}
			if i < len(messages) {
				v.Message = messages[i]
			}
			entry.Decision.TriggeredRules = append(entry.Decision.TriggeredRules, v)
		}

		ledger = append(ledger, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}

	return ledger, nil
}
