// Package simulation executes time-stepped runs: per candle it asks the
// signal engine for a proposed trade, consults the safety gate (SHIELDED
// mode only), applies a frictionless fill, and appends to the trade ledger.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"capital-shield/internal/domain"
	"capital-shield/internal/engine"
	"capital-shield/internal/gate"
	"capital-shield/internal/idhash"
	"capital-shield/internal/market"
	"capital-shield/internal/observability"
	"capital-shield/internal/scoring"
)

// Runner errors.
var (
	// ErrBadConfig is returned for invalid runner configuration, e.g.
	// non-positive initial equity. Fatal at setup, never per-step.
	ErrBadConfig = errors.New("invalid simulation config")
)

// RunState is the lifecycle state of one run.
type RunState string

// Run states. A run moves INIT -> RUNNING -> COMPLETE, or to FAILED on the
// first unrecoverable error: once equity accounting may be corrupted the
// run is not locally recoverable.
const (
	StateInit     RunState = "INIT"
	StateRunning  RunState = "RUNNING"
	StateComplete RunState = "COMPLETE"
	StateFailed   RunState = "FAILED"
)

// Config holds per-run parameters shared by baseline and shielded modes.
type Config struct {
	// InitialEquity is the starting capital; must be positive.
	InitialEquity float64

	// Seed drives the mock signal engine. Identical (dataset, preset,
	// seed) must reproduce an identical SimulationResult bit for bit.
	Seed int64

	// Market configures the regime classifier.
	Market market.Config

	// SnapshotLookback is the number of trailing closes handed to the
	// signal engine, including the current candle.
	SnapshotLookback int

	// HealthSchedule supplies the externally set health flag per step.
	// Nil means always healthy. Crash-test fixtures use it to inject
	// health failures.
	HealthSchedule func(step int) bool
}

// DefaultConfig returns the default run parameters.
func DefaultConfig() Config {
	return Config{
		InitialEquity:    100000,
		Market:           market.DefaultConfig(),
		SnapshotLookback: 10,
	}
}

// Runner executes simulation runs. A Runner is reusable; each Run owns its
// own portfolio, tracker and ledger, so distinct runs never share state.
type Runner struct {
	cfg    Config
	logger *log.Logger
}

// NewRunner creates a runner. A nil logger discards per-step fault logs.
func NewRunner(cfg Config, logger *log.Logger) *Runner {
	if cfg.SnapshotLookback <= 0 {
		cfg.SnapshotLookback = DefaultConfig().SnapshotLookback
	}
	return &Runner{cfg: cfg, logger: logger}
}

// RunPair executes the baseline and shielded runs over an identical signal
// stream: both modes get a fresh mock engine built from the same seed.
func (r *Runner) RunPair(ctx context.Context, ds *domain.Dataset, preset domain.Preset) (baseline, shielded *domain.SimulationResult, err error) {
	baseline, err = r.Run(ctx, engine.NewMock(r.cfg.Seed), ds, preset, domain.ModeBaseline)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline run: %w", err)
	}

	shielded, err = r.Run(ctx, engine.NewMock(r.cfg.Seed), ds, preset, domain.ModeShielded)
	if err != nil {
		return nil, nil, fmt.Errorf("shielded run: %w", err)
	}

	return baseline, shielded, nil
}

// Run executes one simulation over the dataset in chronological candle
// order. Per-step engine faults degrade to HOLD; any other per-step error
// marks the run FAILED and is returned. A failed run never aborts siblings;
// isolation is the caller's concern.
func (r *Runner) Run(ctx context.Context, eng engine.SignalEngine, ds *domain.Dataset, preset domain.Preset, mode domain.Mode) (*domain.SimulationResult, error) {
	state := StateInit
	defer func(start time.Time) {
		observability.RecordRun(string(mode), string(state), time.Since(start).Seconds())
	}(time.Now())

	if r.cfg.InitialEquity <= 0 {
		return nil, fmt.Errorf("%w: initial equity %v must be positive", ErrBadConfig, r.cfg.InitialEquity)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}

	state = StateRunning

	// Frictionless single-asset portfolio: all-in on BUY, all-out on SELL,
	// marked to market at every close.
	cash := r.cfg.InitialEquity
	units := 0.0

	tracker := market.NewTracker(ds.AssetID, r.cfg.InitialEquity, r.cfg.Market)
	closes := ds.Closes()

	ledger := make([]domain.TradeLedgerEntry, 0, len(ds.Candles))
	curve := make([]domain.EquityPoint, 0, len(ds.Candles))

	peak := r.cfg.InitialEquity
	maxDD := 0.0
	tradeCount := 0
	blockedCount := 0

	for i, candle := range ds.Candles {
		if err := ctx.Err(); err != nil {
			state = StateFailed
			return nil, fmt.Errorf("run %s at step %d: %w", state, i, err)
		}

		markEquity := cash + units*candle.Close
		if r.cfg.HealthSchedule != nil {
			tracker.SetHealth(r.cfg.HealthSchedule(i))
		}
		tracker.Step(candle, markEquity)

		trade, err := eng.GenerateSignal(ctx, engine.Snapshot{
			AssetID:   ds.AssetID,
			Timestamp: candle.Timestamp,
			Closes:    snapshotWindow(closes, i, r.cfg.SnapshotLookback),
		})
		if err != nil {
			if !errors.Is(err, engine.ErrEngineFault) {
				state = StateFailed
				return nil, fmt.Errorf("run %s at step %d: %w", state, i, err)
			}
			// Engine fault degrades the step to HOLD; the gate still
			// evaluates it normally.
			observability.RecordEngineFault(eng.Name())
			if r.logger != nil {
				r.logger.Printf("step %d: engine fault, substituting HOLD: %v", i, err)
			}
			trade = domain.ProposedTrade{
				AssetID:   ds.AssetID,
				Action:    domain.ActionHold,
				Timestamp: candle.Timestamp,
			}
		}

		decision := domain.Decision{Allowed: true}
		if mode == domain.ModeShielded {
			decision, err = gate.Evaluate(tracker.State(), preset, trade)
			if err != nil {
				observability.DefaultMetrics.GateErrors.Inc()
				state = StateFailed
				return nil, fmt.Errorf("run %s at step %d: %w", state, i, err)
			}
			codes := make([]string, len(decision.TriggeredRules))
			for j, v := range decision.TriggeredRules {
				codes[j] = string(v.Code)
			}
			observability.RecordDecision(decision.Allowed, codes)
		}

		if decision.Allowed {
			switch trade.Action {
			case domain.ActionBuy:
				if units == 0 && cash > 0 {
					units = cash / candle.Close
					cash = 0
					tradeCount++
				}
			case domain.ActionSell:
				if units > 0 {
					cash = units * candle.Close
					units = 0
					tradeCount++
				}
			}
		} else {
			blockedCount++
		}

		resultingEquity := cash + units*candle.Close

		ledger = append(ledger, domain.TradeLedgerEntry{
			TradeID:         idhash.TradeID(ds.DatasetID, preset.Name, string(mode), i, candle.Timestamp),
			Proposed:        trade,
			Decision:        decision,
			ResultingEquity: resultingEquity,
		})
		curve = append(curve, domain.EquityPoint{
			Timestamp: candle.Timestamp,
			Equity:    resultingEquity,
		})

		if resultingEquity > peak {
			peak = resultingEquity
		}
		if peak > 0 {
			if dd := (peak - resultingEquity) / peak; dd > maxDD {
				maxDD = dd
			}
		}

		observability.DefaultMetrics.StepsSimulated.Inc()
		observability.DefaultMetrics.CurrentDrawdown.
			WithLabelValues(ds.DatasetID, preset.Name).Set(tracker.State().DrawdownFraction)
	}

	terminal := curve[len(curve)-1].Equity
	score, err := scoring.Score(terminal, r.cfg.InitialEquity, maxDD)
	if err != nil {
		state = StateFailed
		return nil, fmt.Errorf("run %s: survival score: %w", state, err)
	}

	state = StateComplete
	return &domain.SimulationResult{
		PresetName:     preset.Name,
		DatasetID:      ds.DatasetID,
		Mode:           mode,
		Ledger:         ledger,
		EquityCurve:    curve,
		InitialEquity:  r.cfg.InitialEquity,
		TerminalEquity: terminal,
		MaxDrawdown:    maxDD,
		TradeCount:     tradeCount,
		BlockedCount:   blockedCount,
		SurvivalScore:  score,
	}, nil
}

// snapshotWindow returns the trailing closes ending at index i, at most
// lookback long, including the current candle.
func snapshotWindow(closes []float64, i, lookback int) []float64 {
	start := i - lookback + 1
	if start < 0 {
		start = 0
	}
	return closes[start : i+1]
}
