package reporting

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"wallet-credit-score/internal/domain"
)

// FeatureColumns is the header of the wallet feature table.
var FeatureColumns = []string{
	"wallet_address",
	"total_transactions",
	"first_tx_timestamp",
	"last_tx_timestamp",
	"num_unique_assets",
	"total_deposit_value",
	"total_borrow_value",
	"total_repay_value",
	"total_liquidation_amount",
	"total_collateral_liquidated",
	"deposit_count",
	"borrow_count",
	"repay_count",
	"liquidation_call_count",
	"activity_duration_days",
	"net_borrow_value",
	"repay_ratio",
	"borrow_to_deposit_ratio",
	"was_liquidated",
	"avg_tx_amount",
	"raw_score",
	"final_credit_score",
}

// ScoreColumns is the header of the wallet score table.
var ScoreColumns = []string{"wallet_address", "final_credit_score"}

// RenderFeaturesCSV renders one row per wallet with every feature column.
// Rows keep the order of scored.
func RenderFeaturesCSV(scored []*domain.ScoredWallet) (string, error) {
	rows := make([][]string, 0, len(scored))
	for _, s := range scored {
		rows = append(rows, []string{
			s.WalletAddress,
			strconv.Itoa(s.TotalTransactions),
			strconv.FormatInt(s.FirstTxTimestamp, 10),
			strconv.FormatInt(s.LastTxTimestamp, 10),
			strconv.Itoa(s.NumUniqueAssets),
			formatFloat(s.TotalDepositValue),
			formatFloat(s.TotalBorrowValue),
			formatFloat(s.TotalRepayValue),
			formatFloat(s.TotalLiquidationAmount),
			formatFloat(s.TotalCollateralLiquidated),
			strconv.Itoa(s.DepositCount),
			strconv.Itoa(s.BorrowCount),
			strconv.Itoa(s.RepayCount),
			strconv.Itoa(s.LiquidationCallCount),
			strconv.FormatInt(s.ActivityDurationDays, 10),
			formatFloat(s.NetBorrowValue),
			formatFloat(s.RepayRatio),
			formatFloat(s.BorrowToDepositRatio),
			strconv.Itoa(s.WasLiquidated),
			formatFloat(s.AvgTxAmount),
			formatFloat(s.RawScore),
			strconv.Itoa(s.FinalCreditScore),
		})
	}
	return renderCSV(FeatureColumns, rows)
}

// RenderScoresCSV renders the two-column score table.
func RenderScoresCSV(scored []*domain.ScoredWallet) (string, error) {
	rows := make([][]string, 0, len(scored))
	for _, s := range scored {
		rows = append(rows, []string{s.WalletAddress, strconv.Itoa(s.FinalCreditScore)})
	}
	return renderCSV(ScoreColumns, rows)
}

func renderCSV(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatFloat uses the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
