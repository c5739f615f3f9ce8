// Package verification checks that scoring runs are reproducible.
// It compares two scored populations wallet by wallet.
package verification

import (
	"context"
	"math"
	"sort"

	"wallet-credit-score/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between expected and actual values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // expected value
	Actual   interface{} // actual value
}

// VerificationResult contains the result of verifying a single wallet.
type VerificationResult struct {
	WalletAddress string
	Match         bool
	Divergences   []FieldDivergence
	ExpectedScore int
	ActualScore   int
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalWallets     int                  // wallets in the expected population
	MatchedWallets   int                  // wallets that matched exactly
	DivergentWallets int                  // wallets with divergences
	MissingWallets   []string             // expected but absent from the actual population
	ExtraWallets     []string             // present only in the actual population
	Results          []VerificationResult // divergent results only, sorted by wallet
}

// OK reports whether both populations are identical.
func (r *VerificationReport) OK() bool {
	return r.DivergentWallets == 0 && len(r.MissingWallets) == 0 && len(r.ExtraWallets) == 0
}

// Verifier interface for scoring verification.
type Verifier interface {
	// Verify recomputes a population and compares it with a reference.
	Verify(ctx context.Context) (*VerificationReport, error)
}

// CompareScoredWallets compares two scored wallets and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareScoredWallets(expected, actual *domain.ScoredWallet) []FieldDivergence {
	var d []FieldDivergence

	intField := func(name string, e, a int64) {
		if e != a {
			d = append(d, FieldDivergence{Field: name, Expected: e, Actual: a})
		}
	}
	floatField := func(name string, e, a float64) {
		if !floatEquals(e, a) {
			d = append(d, FieldDivergence{Field: name, Expected: e, Actual: a})
		}
	}

	if expected.WalletAddress != actual.WalletAddress {
		d = append(d, FieldDivergence{Field: "WalletAddress", Expected: expected.WalletAddress, Actual: actual.WalletAddress})
	}

	intField("TotalTransactions", int64(expected.TotalTransactions), int64(actual.TotalTransactions))
	intField("FirstTxTimestamp", expected.FirstTxTimestamp, actual.FirstTxTimestamp)
	intField("LastTxTimestamp", expected.LastTxTimestamp, actual.LastTxTimestamp)
	intField("NumUniqueAssets", int64(expected.NumUniqueAssets), int64(actual.NumUniqueAssets))
	intField("DepositCount", int64(expected.DepositCount), int64(actual.DepositCount))
	intField("BorrowCount", int64(expected.BorrowCount), int64(actual.BorrowCount))
	intField("RepayCount", int64(expected.RepayCount), int64(actual.RepayCount))
	intField("LiquidationCallCount", int64(expected.LiquidationCallCount), int64(actual.LiquidationCallCount))
	intField("ActivityDurationDays", expected.ActivityDurationDays, actual.ActivityDurationDays)
	intField("WasLiquidated", int64(expected.WasLiquidated), int64(actual.WasLiquidated))

	floatField("TotalDepositValue", expected.TotalDepositValue, actual.TotalDepositValue)
	floatField("TotalBorrowValue", expected.TotalBorrowValue, actual.TotalBorrowValue)
	floatField("TotalRepayValue", expected.TotalRepayValue, actual.TotalRepayValue)
	floatField("TotalLiquidationAmount", expected.TotalLiquidationAmount, actual.TotalLiquidationAmount)
	floatField("TotalCollateralLiquidated", expected.TotalCollateralLiquidated, actual.TotalCollateralLiquidated)
	floatField("NetBorrowValue", expected.NetBorrowValue, actual.NetBorrowValue)
	floatField("RepayRatio", expected.RepayRatio, actual.RepayRatio)
	floatField("BorrowToDepositRatio", expected.BorrowToDepositRatio, actual.BorrowToDepositRatio)
	floatField("AvgTxAmount", expected.AvgTxAmount, actual.AvgTxAmount)
	floatField("RawScore", expected.RawScore, actual.RawScore)

	intField("FinalCreditScore", int64(expected.FinalCreditScore), int64(actual.FinalCreditScore))

	return d
}

// ComparePopulations matches wallets by address and compares every pair.
func ComparePopulations(expected, actual []*domain.ScoredWallet) *VerificationReport {
	actualByWallet := make(map[string]*domain.ScoredWallet, len(actual))
	for _, a := range actual {
		actualByWallet[a.WalletAddress] = a
	}

	report := &VerificationReport{TotalWallets: len(expected)}
	seen := make(map[string]struct{}, len(expected))

	for _, e := range expected {
		seen[e.WalletAddress] = struct{}{}
		a, ok := actualByWallet[e.WalletAddress]
		if !ok {
			report.MissingWallets = append(report.MissingWallets, e.WalletAddress)
			continue
		}
		divergences := CompareScoredWallets(e, a)
		if len(divergences) == 0 {
			report.MatchedWallets++
			continue
		}
		report.DivergentWallets++
		report.Results = append(report.Results, VerificationResult{
			WalletAddress: e.WalletAddress,
			Divergences:   divergences,
			ExpectedScore: e.FinalCreditScore,
			ActualScore:   a.FinalCreditScore,
		})
	}

	for _, a := range actual {
		if _, ok := seen[a.WalletAddress]; !ok {
			report.ExtraWallets = append(report.ExtraWallets, a.WalletAddress)
		}
	}

	sort.Strings(report.MissingWallets)
	sort.Strings(report.ExtraWallets)
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].WalletAddress < report.Results[j].WalletAddress
	})
	return report
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
