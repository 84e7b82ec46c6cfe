package domain

import "time"

// Mode selects whether the safety gate is enforced during a run.
type Mode string

// Mode constants.
const (
	// ModeBaseline applies every proposed trade unconditionally; the gate
	// is bypassed entirely.
	ModeBaseline Mode = "BASELINE"

	// ModeShielded routes every proposed trade through the safety gate.
	ModeShielded Mode = "SHIELDED"
)

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Timestamp int64 // Unix ms
	Equity    float64
}

// SimulationResult is the immutable output of one completed run.
type SimulationResult struct {
	PresetName string
	DatasetID  string
	Mode       Mode

	Ledger      []TradeLedgerEntry
	EquityCurve []EquityPoint

	InitialEquity  float64
	TerminalEquity float64
	MaxDrawdown    float64 // fraction in [0, 1]
	TradeCount     int     // executed trades (BUY/SELL fills)
	BlockedCount   int     // gate denials; always 0 in BASELINE mode
	SurvivalScore  float64 // in [0, 1]
}

// ComparisonRow holds the baseline/shielded pair and deltas for one
// (dataset, preset) combination.
type ComparisonRow struct {
	DatasetID  string
	PresetName string

	Baseline *SimulationResult
	Shielded *SimulationResult

	// Deltas are shielded minus baseline.
	TradeCountDelta    int
	BlockedCount       int
	MaxDrawdownDelta   float64
	SurvivalScoreDelta float64
}

// FailedCombination records one (dataset, preset) combination that could
// not produce a result, with its error summary.
type FailedCombination struct {
	DatasetID  string
	PresetName string
	Error      string
}

// ComparisonReport aggregates a validation batch. Successful rows and
// failures are always both listed; silent partial loss is disallowed.
type ComparisonReport struct {
	GeneratedAt time.Time
	Rows        []ComparisonRow
	Failures    []FailedCombination
}
