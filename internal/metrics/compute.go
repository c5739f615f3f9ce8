package metrics

import (
	"math"

	"wallet-credit-score/internal/domain"
)

const (
	// RepayRatioCap bounds repay/borrow from above.
	RepayRatioCap = 1.0
	// BorrowToDepositCap bounds borrow/deposit from above.
	BorrowToDepositCap = 10.0

	secondsPerDay = 86400
)

// ComputeFeatures derives ratio and composite features from an aggregate.
// Pure: agg is not modified. Every float feature is finite on return.
func ComputeFeatures(agg *domain.WalletAggregate) *domain.WalletFeatures {
	f := &domain.WalletFeatures{WalletAggregate: *agg}

	f.ActivityDurationDays = floorDiv(agg.LastTxTimestamp-agg.FirstTxTimestamp, secondsPerDay)
	if f.ActivityDurationDays < 0 {
		f.ActivityDurationDays = 0
	}

	f.NetBorrowValue = agg.TotalBorrowValue - agg.TotalRepayValue

	if agg.TotalBorrowValue > 0 {
		f.RepayRatio = math.Min(agg.TotalRepayValue/agg.TotalBorrowValue, RepayRatioCap)
	}

	if agg.TotalDepositValue > 0 {
		f.BorrowToDepositRatio = math.Min(agg.TotalBorrowValue/agg.TotalDepositValue, BorrowToDepositCap)
	}

	if agg.LiquidationCallCount > 0 {
		f.WasLiquidated = 1
	}

	if agg.TotalTransactions > 0 {
		total := agg.TotalDepositValue + agg.TotalBorrowValue + agg.TotalRepayValue
		f.AvgTxAmount = total / float64(agg.TotalTransactions)
	}

	sanitize(f)
	return f
}

// ComputeAllFeatures applies ComputeFeatures to each aggregate, preserving order.
func ComputeAllFeatures(aggs []*domain.WalletAggregate) []*domain.WalletFeatures {
	out := make([]*domain.WalletFeatures, 0, len(aggs))
	for _, agg := range aggs {
		out = append(out, ComputeFeatures(agg))
	}
	return out
}

// sanitize replaces NaN and ±Inf with 0 on every float feature.
func sanitize(f *domain.WalletFeatures) {
	for _, p := range []*float64{
		&f.TotalDepositValue,
		&f.TotalBorrowValue,
		&f.TotalRepayValue,
		&f.TotalLiquidationAmount,
		&f.TotalCollateralLiquidated,
		&f.NetBorrowValue,
		&f.RepayRatio,
		&f.BorrowToDepositRatio,
		&f.AvgTxAmount,
	} {
		*p = finiteOrZero(*p)
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
