package verification

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/ingestion/stub"
	"wallet-credit-score/internal/pipeline"
	"wallet-credit-score/internal/storage/memory"
)

func scored(wallet string, raw float64, final int) *domain.ScoredWallet {
	sw := &domain.ScoredWallet{RawScore: raw, FinalCreditScore: final}
	sw.WalletAddress = wallet
	return sw
}

func TestCompareScoredWallets_ExactMatch(t *testing.T) {
	a := scored("0xa", 512.25, 640)
	a.TotalDepositValue = 10
	a.RepayRatio = 0.5
	b := *a

	if d := CompareScoredWallets(a, &b); len(d) != 0 {
		t.Errorf("expected no divergences, got %+v", d)
	}
}

func TestCompareScoredWallets_WithinTolerance(t *testing.T) {
	a := scored("0xa", 512.25, 640)
	b := scored("0xa", 512.25+FloatTolerance/2, 640)

	if d := CompareScoredWallets(a, b); len(d) != 0 {
		t.Errorf("expected no divergences within tolerance, got %+v", d)
	}
}

func TestCompareScoredWallets_Divergent(t *testing.T) {
	a := scored("0xa", 512.25, 640)
	b := scored("0xa", 513, 641)
	b.LiquidationCallCount = 1

	d := CompareScoredWallets(a, b)
	fields := make(map[string]bool)
	for _, div := range d {
		fields[div.Field] = true
	}
	for _, want := range []string{"RawScore", "FinalCreditScore", "LiquidationCallCount"} {
		if !fields[want] {
			t.Errorf("expected divergence on %s", want)
		}
	}
	if len(d) != 3 {
		t.Errorf("expected 3 divergences, got %d", len(d))
	}
}

func TestComparePopulations(t *testing.T) {
	expected := []*domain.ScoredWallet{scored("0xa", 1, 0), scored("0xb", 2, 1000), scored("0xc", 1.5, 500)}
	actual := []*domain.ScoredWallet{scored("0xb", 2, 1000), scored("0xa", 1, 0), scored("0xd", 1, 10)}

	report := ComparePopulations(expected, actual)
	if report.TotalWallets != 3 || report.MatchedWallets != 2 {
		t.Errorf("unexpected totals: %+v", report)
	}
	if len(report.MissingWallets) != 1 || report.MissingWallets[0] != "0xc" {
		t.Errorf("MissingWallets = %v, want [0xc]", report.MissingWallets)
	}
	if len(report.ExtraWallets) != 1 || report.ExtraWallets[0] != "0xd" {
		t.Errorf("ExtraWallets = %v, want [0xd]", report.ExtraWallets)
	}
	if report.OK() {
		t.Error("report should not be OK")
	}
}

func TestDeterminismVerifier_Fixtures(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		v := NewDeterminismVerifier(DeterminismVerifierOptions{
			Source: stub.NewStubEventSource("fixtures", pipeline.FixtureEvents()),
			Seed:   seed,
			Logger: zerolog.Nop(),
		})

		report, err := v.Verify(context.Background())
		if err != nil {
			t.Fatalf("seed %d: Verify failed: %v", seed, err)
		}
		if !report.OK() {
			t.Errorf("seed %d: scores depend on input order: %+v", seed, report.Results)
		}
		if report.TotalWallets != 4 {
			t.Errorf("seed %d: TotalWallets = %d, want 4", seed, report.TotalWallets)
		}
	}
}

func TestReplayVerifier(t *testing.T) {
	ctx := context.Background()
	scoreStore := memory.NewWalletScoreStore()

	// store scores from a first run
	v := NewDeterminismVerifier(DeterminismVerifierOptions{
		Source: stub.NewStubEventSource("fixtures", pipeline.FixtureEvents()),
		Logger: zerolog.Nop(),
	})
	first, err := v.score(ctx, "first", pipeline.FixtureEvents())
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	batch := &domain.ScoreBatch{RunID: "r1", ScoredAt: 1, Wallets: first}
	if err := scoreStore.InsertBulk(ctx, batch.Records()); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	rv := NewReplayVerifier(ReplayVerifierOptions{
		Source:     stub.NewStubEventSource("fixtures", pipeline.FixtureEvents()),
		ScoreStore: scoreStore,
		Logger:     zerolog.Nop(),
	})
	report, err := rv.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !report.OK() {
		t.Errorf("expected stored scores to replay exactly: %+v", report)
	}

	// drop the liquidated wallet's events: population bounds shift
	var trimmed []*domain.RawEvent
	for _, e := range pipeline.FixtureEvents() {
		if e.WalletAddress != pipeline.FixtureWalletLiquidated {
			trimmed = append(trimmed, e)
		}
	}
	rv = NewReplayVerifier(ReplayVerifierOptions{
		Source:     stub.NewStubEventSource("trimmed", trimmed),
		ScoreStore: scoreStore,
		Logger:     zerolog.Nop(),
	})
	report, err = rv.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if report.OK() {
		t.Error("expected divergence after removing a wallet")
	}
	if len(report.MissingWallets) != 1 || report.MissingWallets[0] != pipeline.FixtureWalletLiquidated {
		t.Errorf("MissingWallets = %v", report.MissingWallets)
	}
}
