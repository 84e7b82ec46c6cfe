package reporting

import (
	"fmt"
	"strings"
	"time"

	"capital-shield/internal/domain"
)

// RenderMarkdown renders a comparison report as a Markdown string.
func RenderMarkdown(r *domain.ComparisonReport) string {
	var sb strings.Builder
	summary := Summarize(r)

	sb.WriteString("# Validation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Datasets: %d | Presets: %d | Runs: %d | Failures: %d\n\n",
		summary.DatasetCount, summary.PresetCount, summary.RunCount, summary.FailureCount))

	sb.WriteString("## Baseline vs Shielded\n\n")
	if len(r.Rows) > 0 {
		sb.WriteString("| Dataset | Preset | Base Terminal | Shield Terminal | Base MaxDD | Shield MaxDD | MaxDD Delta | Blocked | Trades Delta | RSA Delta | Shield RSA | Grade |\n")
		sb.WriteString("|---------|--------|---------------|-----------------|------------|--------------|-------------|---------|--------------|-----------|------------|-------|\n")
		for _, row := range sortedRows(r.Rows) {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.2f | %.4f | %.4f | %+.4f | %d | %+d | %+.4f | %.4f | %s |\n",
				row.DatasetID, row.PresetName,
				row.Baseline.TerminalEquity, row.Shielded.TerminalEquity,
				row.Baseline.MaxDrawdown, row.Shielded.MaxDrawdown,
				row.MaxDrawdownDelta, row.BlockedCount, row.TradeCountDelta,
				row.SurvivalScoreDelta, row.Shielded.SurvivalScore, gradeFor(row)))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Shielding reduced max drawdown in %d of %d runs.\n\n",
			summary.ImprovedCount, summary.RunCount))
	} else {
		sb.WriteString("No completed runs.\n\n")
	}

	if len(r.Failures) > 0 {
		sb.WriteString("## Failed Combinations\n\n")
		sb.WriteString("| Dataset | Preset | Error |\n")
		sb.WriteString("|---------|--------|-------|\n")
		for _, f := range r.Failures {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				f.DatasetID, f.PresetName, strings.ReplaceAll(f.Error, "|", "\\|")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
