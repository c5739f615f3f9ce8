package reporting

import (
	"strings"
	"testing"
	"time"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/normalization"
)

func scoredWallet(addr string, score int, first, last int64) *domain.ScoredWallet {
	return &domain.ScoredWallet{
		WalletFeatures: domain.WalletFeatures{
			WalletAggregate: domain.WalletAggregate{
				WalletAddress:     addr,
				TotalTransactions: 2,
				FirstTxTimestamp:  first,
				LastTxTimestamp:   last,
				TotalDepositValue: 10,
			},
			RepayRatio: 1,
		},
		FinalCreditScore: score,
	}
}

func testInput() Input {
	q := normalization.NewQualityStats()
	q.EventsRead = 5
	q.EventsKept = 4
	q.Record(normalization.IssueMissingWallet)
	q.UnknownSymbols["FOO"] = 1
	q.AssetSymbols["USDC"] = 3
	q.AssetSymbols["FOO"] = 1

	return Input{
		RunID: "run-1",
		Scored: []*domain.ScoredWallet{
			scoredWallet("0xa", 0, 1000, 2000),
			scoredWallet("0xb", 1000, 500, 3000),
			scoredWallet("0xc", 200, 0, 0),
			scoredWallet("0xd", 799, 1500, 1500),
		},
		Quality: q,
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
}

func TestGenerator_Generate(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(testInput())

	if r.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", r.RunID)
	}
	if !r.GeneratedAt.Equal(fixedClock()) {
		t.Errorf("GeneratedAt = %v", r.GeneratedAt)
	}
	if len(r.DataVersion) != 16 {
		t.Errorf("DataVersion = %q, want 16 hex chars", r.DataVersion)
	}

	ds := r.DataSummary
	if ds.EventsRead != 5 || ds.EventsKept != 4 || ds.TotalWallets != 4 {
		t.Errorf("unexpected data summary: %+v", ds)
	}
	if ds.DateRangeStart != 500 || ds.DateRangeEnd != 3000 {
		t.Errorf("date range = [%d, %d], want [500, 3000]", ds.DateRangeStart, ds.DateRangeEnd)
	}

	if r.ScoreSummary.Min != 0 || r.ScoreSummary.Max != 1000 {
		t.Errorf("unexpected score summary: %+v", r.ScoreSummary)
	}
	if r.ScoreSummary.Mean != 499.75 {
		t.Errorf("Mean = %v, want 499.75", r.ScoreSummary.Mean)
	}
}

func TestGenerator_ScoreBands(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(testInput())

	if len(r.ScoreBands) != 5 {
		t.Fatalf("expected 5 bands, got %d", len(r.ScoreBands))
	}
	wantCounts := []int{1, 1, 0, 1, 1}
	for i, b := range r.ScoreBands {
		if b.Count != wantCounts[i] {
			t.Errorf("band %s count = %d, want %d", b.Label, b.Count, wantCounts[i])
		}
	}
	if r.ScoreBands[0].Percent != 25 {
		t.Errorf("band 0 percent = %v, want 25", r.ScoreBands[0].Percent)
	}
	if r.ScoreBands[2].MeanRepayRatio != 0 {
		t.Errorf("empty band mean = %v, want 0", r.ScoreBands[2].MeanRepayRatio)
	}
	if r.ScoreBands[4].MeanTransactions != 2 {
		t.Errorf("band 4 mean transactions = %v, want 2", r.ScoreBands[4].MeanTransactions)
	}
}

func TestBandIndex(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, 0}, {199, 0}, {200, 1}, {399, 1}, {400, 2}, {600, 3}, {799, 3}, {800, 4}, {1000, 4},
	}
	for _, tt := range tests {
		if got := bandIndex(tt.score); got != tt.want {
			t.Errorf("bandIndex(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestGenerator_DataVersionStable(t *testing.T) {
	g := NewGenerator().WithClock(fixedClock)
	r1 := g.Generate(testInput())
	r2 := g.Generate(testInput())
	if r1.DataVersion != r2.DataVersion {
		t.Errorf("data version not stable: %s vs %s", r1.DataVersion, r2.DataVersion)
	}

	in := testInput()
	in.Scored[0].FinalCreditScore = 1
	r3 := g.Generate(in)
	if r3.DataVersion == r1.DataVersion {
		t.Error("data version should change when a score changes")
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(NewGenerator().WithClock(fixedClock).Generate(testInput()))

	for _, want := range []string{
		"# Wallet Credit Score Report",
		"Generated: 2024-01-15T12:00:00Z",
		"Run: run-1",
		"| Events Read | 5 |",
		"| missing_wallet | 1 |",
		"Unknown symbols (default decimals applied): FOO",
		"Asset symbols: FOO, USDC",
		"| 0-200 (Very Low) | 1 | 25.00% |",
		"## Average Feature Values by Score Range",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoQuality(t *testing.T) {
	in := testInput()
	in.Quality = nil
	md := RenderMarkdown(NewGenerator().WithClock(fixedClock).Generate(in))
	if !strings.Contains(md, "No data quality statistics available.") {
		t.Error("expected placeholder for missing quality stats")
	}
}

func TestGenerator_Checks(t *testing.T) {
	in := testInput()
	in.Source = "fixtures"
	in.Checks = []CheckRow{
		{Name: "kept_ratio", Threshold: ">= 0.95", Actual: "0.80", Pass: false},
		{Name: "unknown_symbols", Threshold: "0", Actual: "1", Pass: true},
	}
	r := NewGenerator().WithClock(fixedClock).Generate(in)

	if r.DataQuality.AllChecksPassed {
		t.Error("expected AllChecksPassed=false")
	}
	md := RenderMarkdown(r)
	for _, want := range []string{
		"Source: fixtures",
		"| kept_ratio | >= 0.95 | 0.80 | WARN |",
		"**Some checks failed.**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
