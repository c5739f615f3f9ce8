package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Credit Score Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Data version: %s\n\n", r.RunID, r.DataVersion))
	if r.Source != "" {
		sb.WriteString(fmt.Sprintf("Source: %s\n\n", r.Source))
	}

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Events Read | %d |\n", r.DataSummary.EventsRead))
	sb.WriteString(fmt.Sprintf("| Events Kept | %d |\n", r.DataSummary.EventsKept))
	sb.WriteString(fmt.Sprintf("| Wallets | %d |\n", r.DataSummary.TotalWallets))
	sb.WriteString(fmt.Sprintf("| Date Range Start (s) | %d |\n", r.DataSummary.DateRangeStart))
	sb.WriteString(fmt.Sprintf("| Date Range End (s) | %d |\n", r.DataSummary.DateRangeEnd))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.Checks) > 0 {
		sb.WriteString("### Sufficiency Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.Checks {
			status := "WARN"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")
		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Scores were computed; review the input data.\n\n")
		}
	}
	if len(r.DataQuality.Issues) > 0 {
		sb.WriteString("### Issues\n\n")
		sb.WriteString("| Issue | Count |\n")
		sb.WriteString("|-------|-------|\n")
		for _, row := range r.DataQuality.Issues {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.Issue, row.Count))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Kept events without amount: %d\n\n", r.DataQuality.AmountsMissing))
		sb.WriteString(fmt.Sprintf("Asset symbols: %s\n\n", joinOrNone(r.DataQuality.AssetSymbols)))
		sb.WriteString(fmt.Sprintf("Unknown symbols (default decimals applied): %s\n\n", joinOrNone(r.DataQuality.UnknownSymbols)))
	} else {
		sb.WriteString("No data quality statistics available.\n\n")
	}

	// Score Distribution
	sb.WriteString("## Score Distribution\n\n")
	sb.WriteString(fmt.Sprintf("Min: %d | Max: %d | Mean: %.2f\n\n",
		r.ScoreSummary.Min, r.ScoreSummary.Max, r.ScoreSummary.Mean))
	sb.WriteString("| Range | Wallets | Percent |\n")
	sb.WriteString("|-------|---------|---------|\n")
	for _, b := range r.ScoreBands {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f%% |\n", b.Label, b.Count, b.Percent))
	}
	sb.WriteString("\n")

	// Band feature means
	sb.WriteString("## Average Feature Values by Score Range\n\n")
	sb.WriteString("| Range | Transactions | Deposit | Borrow | RepayRatio | BorrowToDeposit | Liquidations | DurationDays |\n")
	sb.WriteString("|-------|--------------|---------|--------|------------|-----------------|--------------|--------------|\n")
	for _, b := range r.ScoreBands {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.4f | %.4f | %.4f | %.4f | %.2f | %.2f |\n",
			b.Label, b.MeanTransactions, b.MeanDepositValue, b.MeanBorrowValue,
			b.MeanRepayRatio, b.MeanBorrowToDeposit, b.MeanLiquidations, b.MeanActivityDuration))
	}
	sb.WriteString("\n")

	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
