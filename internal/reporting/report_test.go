package reporting

import (
	"strings"
	"testing"
	"time"

	"capital-shield/internal/domain"
)

func sampleReport() *domain.ComparisonReport {
	baselineA := &domain.SimulationResult{
		DatasetID: "btc-daily", PresetName: "BALANCED", Mode: domain.ModeBaseline,
		TerminalEquity: 91000, MaxDrawdown: 0.32, TradeCount: 14, SurvivalScore: 0.56,
	}
	shieldedA := &domain.SimulationResult{
		DatasetID: "btc-daily", PresetName: "BALANCED", Mode: domain.ModeShielded,
		TerminalEquity: 97000, MaxDrawdown: 0.11, TradeCount: 9, BlockedCount: 6, SurvivalScore: 0.79,
	}
	baselineB := &domain.SimulationResult{
		DatasetID: "eth-daily", PresetName: "BALANCED", Mode: domain.ModeBaseline,
		TerminalEquity: 105000, MaxDrawdown: 0.08, TradeCount: 6, SurvivalScore: 0.72,
	}
	shieldedB := &domain.SimulationResult{
		DatasetID: "eth-daily", PresetName: "BALANCED", Mode: domain.ModeShielded,
		TerminalEquity: 105000, MaxDrawdown: 0.08, TradeCount: 6, SurvivalScore: 0.72,
	}

	return &domain.ComparisonReport{
		GeneratedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Rows: []domain.ComparisonRow{
			{
				DatasetID: "eth-daily", PresetName: "BALANCED",
				Baseline: baselineB, Shielded: shieldedB,
			},
			{
				DatasetID: "btc-daily", PresetName: "BALANCED",
				Baseline: baselineA, Shielded: shieldedA,
				TradeCountDelta: -5, BlockedCount: 6,
				MaxDrawdownDelta: -0.21, SurvivalScoreDelta: 0.23,
			},
		},
		Failures: []domain.FailedCombination{
			{DatasetID: "bad-data", PresetName: "BALANCED", Error: "dataset: no candles | truncated"},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleReport())

	if s.DatasetCount != 3 {
		t.Errorf("DatasetCount = %d, want 3", s.DatasetCount)
	}
	if s.PresetCount != 1 {
		t.Errorf("PresetCount = %d, want 1", s.PresetCount)
	}
	if s.RunCount != 2 || s.FailureCount != 1 {
		t.Errorf("RunCount = %d, FailureCount = %d", s.RunCount, s.FailureCount)
	}
	if s.ImprovedCount != 1 {
		t.Errorf("ImprovedCount = %d, want 1", s.ImprovedCount)
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleReport())

	for _, want := range []string{
		"# Validation Report",
		"Generated: 2026-08-25T12:00:00Z",
		"Datasets: 3 | Presets: 1 | Runs: 2 | Failures: 1",
		"## Baseline vs Shielded",
		"Shielding reduced max drawdown in 1 of 2 runs.",
		"## Failed Combinations",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}

	// Rows are sorted by dataset regardless of input order.
	btc := strings.Index(md, "| btc-daily |")
	eth := strings.Index(md, "| eth-daily |")
	if btc < 0 || eth < 0 || btc > eth {
		t.Errorf("Rows not in dataset order: btc at %d, eth at %d", btc, eth)
	}

	// Pipes inside error messages must not break the table.
	if !strings.Contains(md, `no candles \| truncated`) {
		t.Error("Pipe in failure message not escaped")
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&domain.ComparisonReport{GeneratedAt: time.Now().UTC()})
	if !strings.Contains(md, "No completed runs.") {
		t.Error("Empty report missing placeholder")
	}
	if strings.Contains(md, "## Failed Combinations") {
		t.Error("Empty report must not render a failures section")
	}
}

func TestRenderCSV(t *testing.T) {
	csv := RenderCSV(sampleReport().Rows)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "dataset_id,preset,baseline_terminal") {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "btc-daily,BALANCED,") {
		t.Errorf("Rows not sorted: %s", lines[1])
	}

	// Shielded RSA 0.79 grades B+.
	if !strings.HasSuffix(lines[1], ",B+") {
		t.Errorf("Grade missing from row: %s", lines[1])
	}
	fields := strings.Split(lines[1], ",")
	if len(fields) != 13 {
		t.Errorf("Expected 13 fields, got %d", len(fields))
	}
}
