package reporting

import (
	"fmt"
	"strings"

	"capital-shield/internal/domain"
)

// RenderCSV renders comparison rows as a CSV string.
func RenderCSV(rows []domain.ComparisonRow) string {
	var sb strings.Builder

	sb.WriteString("dataset_id,preset,baseline_terminal,shielded_terminal,")
	sb.WriteString("baseline_max_drawdown,shielded_max_drawdown,max_drawdown_delta,")
	sb.WriteString("blocked_count,trade_count_delta,")
	sb.WriteString("baseline_rsa,shielded_rsa,rsa_delta,grade\n")

	for _, row := range sortedRows(rows) {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%d,%.6f,%.6f,%.6f,%s\n",
			row.DatasetID,
			row.PresetName,
			row.Baseline.TerminalEquity,
			row.Shielded.TerminalEquity,
			row.Baseline.MaxDrawdown,
			row.Shielded.MaxDrawdown,
			row.MaxDrawdownDelta,
			row.BlockedCount,
			row.TradeCountDelta,
			row.Baseline.SurvivalScore,
			row.Shielded.SurvivalScore,
			row.SurvivalScoreDelta,
			gradeFor(row),
		))
	}

	return sb.String()
}
