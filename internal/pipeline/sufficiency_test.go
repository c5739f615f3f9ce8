package pipeline

import (
	"testing"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/normalization"
)

func TestCheckSufficiency_AllPass(t *testing.T) {
	q := normalization.NewQualityStats()
	q.EventsRead = 100
	q.EventsKept = 100
	q.AmountsMissing = 2

	scored := []*domain.ScoredWallet{{}, {}}
	result := CheckSufficiency(q, scored)

	if !result.AllPass {
		t.Errorf("expected all checks to pass: %+v", result.Checks)
	}
	if len(result.Checks) != 4 {
		t.Errorf("expected 4 checks, got %d", len(result.Checks))
	}
}

func TestCheckSufficiency_Failures(t *testing.T) {
	q := normalization.NewQualityStats()
	q.EventsRead = 10
	q.EventsKept = 8
	q.AmountsMissing = 4
	q.UnknownSymbols["XYZ"] = 1

	result := CheckSufficiency(q, []*domain.ScoredWallet{{}})
	if result.AllPass {
		t.Fatal("expected failures")
	}

	want := map[string]bool{
		"kept_ratio":       false,
		"amount_coverage":  false,
		"unknown_symbols":  false,
		"distinct_wallets": false,
	}
	for _, c := range result.Checks {
		if c.Pass != want[c.Name] {
			t.Errorf("check %s: pass=%v, want %v", c.Name, c.Pass, want[c.Name])
		}
	}
}

func TestCheckSufficiency_NilQuality(t *testing.T) {
	result := CheckSufficiency(nil, nil)
	if result.AllPass {
		t.Error("empty input must not pass")
	}
	rows := convertToCheckRows(result)
	if len(rows) != len(result.Checks) {
		t.Errorf("expected %d rows, got %d", len(result.Checks), len(rows))
	}
}
