// Package scoring maps wallet features to a bounded credit score.
package scoring

import (
	"math"

	"wallet-credit-score/internal/domain"
)

// Heuristic weights.
const (
	Baseline           = 500.0
	LiquidationPenalty = 100.0 // per liquidation call
	LeveragePenalty    = 20.0  // per unit of borrow-to-deposit ratio
	RepayReward        = 200.0 // at repay ratio 1.0
	ActivityWeight     = 10.0  // times ln(1+transactions)
	DepositWeight      = 5.0   // times ln(1+deposit value)
)

// Final score range.
const (
	MinScore = 0
	MaxScore = 1000

	// DegenerateScore is assigned to every wallet when all raw scores are equal.
	DegenerateScore = 500
)

// RawScore evaluates the additive heuristic for one wallet.
func RawScore(f *domain.WalletFeatures) float64 {
	score := Baseline
	score -= LiquidationPenalty * float64(f.LiquidationCallCount)
	score -= LeveragePenalty * f.BorrowToDepositRatio
	score += RepayReward * f.RepayRatio
	score += ActivityWeight * math.Log1p(float64(f.TotalTransactions))
	score += DepositWeight * math.Log1p(math.Max(f.TotalDepositValue, 0))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

// Score computes raw scores for the population and rescales them into
// [MinScore, MaxScore] by min-max normalization. Final scores are rounded half
// to even. Input order is preserved; features are not modified.
func Score(features []*domain.WalletFeatures) []*domain.ScoredWallet {
	scored := make([]*domain.ScoredWallet, 0, len(features))
	if len(features) == 0 {
		return scored
	}

	// pass 1: raw scores and population bounds
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, f := range features {
		raw := RawScore(f)
		scored = append(scored, &domain.ScoredWallet{WalletFeatures: *f, RawScore: raw})
		lo = math.Min(lo, raw)
		hi = math.Max(hi, raw)
	}

	// pass 2: rescale
	span := hi - lo
	for _, s := range scored {
		if span == 0 {
			s.FinalCreditScore = DegenerateScore
			continue
		}
		s.FinalCreditScore = Scale(s.RawScore, lo, span)
	}
	return scored
}

// Scale maps raw into [MinScore, MaxScore] given the population minimum and span (max-min > 0).
func Scale(raw, lo, span float64) int {
	v := math.RoundToEven((raw - lo) / span * MaxScore)
	return clamp(int(v), MinScore, MaxScore)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
