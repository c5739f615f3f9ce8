package pipeline

import (
	"fmt"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/normalization"
	"wallet-credit-score/internal/reporting"
)

// Sufficiency thresholds. Failing a check is reported, never fatal.
const (
	MinKeptRatio       = 0.95 // kept events / events read
	MinAmountCoverage  = 0.95 // kept events with a usable amount / kept events
	MaxUnknownSymbols  = 0
	MinDistinctWallets = 2 // fewer wallets always scale to the degenerate score
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
}

// CheckSufficiency evaluates the normalized batch and the scored population
// against the sufficiency thresholds.
func CheckSufficiency(q *normalization.QualityStats, scored []*domain.ScoredWallet) *SufficiencyResult {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 4),
		AllPass: true,
	}
	if q == nil {
		q = normalization.NewQualityStats()
	}

	add := func(c SufficiencyCheck) {
		result.Checks = append(result.Checks, c)
		if !c.Pass {
			result.AllPass = false
		}
	}

	keptRatio := ratio(q.EventsKept, q.EventsRead)
	add(SufficiencyCheck{
		Name:      "kept_ratio",
		Threshold: fmt.Sprintf(">= %.2f", MinKeptRatio),
		Actual:    fmt.Sprintf("%.4f", keptRatio),
		Pass:      q.EventsRead > 0 && keptRatio >= MinKeptRatio,
	})

	coverage := ratio(q.EventsKept-q.AmountsMissing, q.EventsKept)
	add(SufficiencyCheck{
		Name:      "amount_coverage",
		Threshold: fmt.Sprintf(">= %.2f", MinAmountCoverage),
		Actual:    fmt.Sprintf("%.4f", coverage),
		Pass:      q.EventsKept > 0 && coverage >= MinAmountCoverage,
	})

	unknown := len(q.UnknownSymbols)
	add(SufficiencyCheck{
		Name:      "unknown_symbols",
		Threshold: fmt.Sprintf("<= %d", MaxUnknownSymbols),
		Actual:    fmt.Sprintf("%d", unknown),
		Pass:      unknown <= MaxUnknownSymbols,
	})

	add(SufficiencyCheck{
		Name:      "distinct_wallets",
		Threshold: fmt.Sprintf(">= %d", MinDistinctWallets),
		Actual:    fmt.Sprintf("%d", len(scored)),
		Pass:      len(scored) >= MinDistinctWallets,
	})

	return result
}

// convertToCheckRows converts a SufficiencyResult to report rows.
func convertToCheckRows(result *SufficiencyResult) []reporting.CheckRow {
	rows := make([]reporting.CheckRow, len(result.Checks))
	for i, c := range result.Checks {
		rows[i] = reporting.CheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	return rows
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
