// Package reporting renders validation batch results as Markdown and CSV.
package reporting

import (
	"sort"

	"capital-shield/internal/domain"
	"capital-shield/internal/scoring"
)

// Summary aggregates a comparison report for rendering.
type Summary struct {
	DatasetCount int
	PresetCount  int
	RunCount     int
	FailureCount int

	// ImprovedCount is the number of rows where shielding reduced max
	// drawdown versus baseline.
	ImprovedCount int
}

// Summarize computes the header-level aggregates of a report.
func Summarize(r *domain.ComparisonReport) Summary {
	datasets := map[string]struct{}{}
	presets := map[string]struct{}{}
	improved := 0
	for _, row := range r.Rows {
		datasets[row.DatasetID] = struct{}{}
		presets[row.PresetName] = struct{}{}
		if row.MaxDrawdownDelta < 0 {
			improved++
		}
	}
	for _, f := range r.Failures {
		datasets[f.DatasetID] = struct{}{}
		presets[f.PresetName] = struct{}{}
	}
	return Summary{
		DatasetCount:  len(datasets),
		PresetCount:   len(presets),
		RunCount:      len(r.Rows),
		FailureCount:  len(r.Failures),
		ImprovedCount: improved,
	}
}

// gradeFor returns the letter grade of the shielded run's survival score.
func gradeFor(row domain.ComparisonRow) string {
	return scoring.Grade(row.Shielded.SurvivalScore)
}

// sortedRows returns rows ordered by dataset, then preset. The validator
// already emits this order; rendering does not rely on it.
func sortedRows(rows []domain.ComparisonRow) []domain.ComparisonRow {
	out := make([]domain.ComparisonRow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		if out[i].DatasetID != out[j].DatasetID {
			return out[i].DatasetID < out[j].DatasetID
		}
		return out[i].PresetName < out[j].PresetName
	})
	return out
}
