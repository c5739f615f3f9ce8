package normalization

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
)

func TestRunner_Normalize(t *testing.T) {
	raws := []*domain.RawEvent{
		{WalletAddress: "w1", Action: domain.ActionDeposit, Payload: &domain.ActionPayload{AssetSymbol: strPtr("USDC"), Amount: strPtr("1000000")}},
		{WalletAddress: "", Action: domain.ActionDeposit},
		{WalletAddress: "w2", Action: domain.ActionBorrow, Payload: &domain.ActionPayload{AssetSymbol: strPtr("FOO"), Amount: strPtr("10")}},
		{WalletAddress: "w2", Action: domain.ActionRepay, Payload: &domain.ActionPayload{AssetSymbol: strPtr("DAI"), Amount: strPtr("1e18")}},
		{WalletAddress: "w3", Action: domain.ActionRepay},
	}

	r := NewRunner(DefaultDecimalsTable(), zerolog.Nop())
	res, err := r.Normalize(context.Background(), raws)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(res.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(res.Events))
	}
	if res.Events[0].WalletAddress != "w1" || res.Events[3].WalletAddress != "w3" {
		t.Error("input order not preserved")
	}

	q := res.Quality
	if q.EventsRead != 5 || q.EventsKept != 4 {
		t.Errorf("expected read=5 kept=4, got read=%d kept=%d", q.EventsRead, q.EventsKept)
	}
	if q.AmountsMissing != 2 {
		t.Errorf("expected 2 missing amounts, got %d", q.AmountsMissing)
	}
	if q.Count(IssueMissingWallet) != 1 {
		t.Errorf("expected 1 missing wallet, got %d", q.Count(IssueMissingWallet))
	}
	if q.Count(IssueNonDigitAmount) != 1 {
		t.Errorf("expected 1 non-digit amount, got %d", q.Count(IssueNonDigitAmount))
	}
	if got := q.SortedUnknownSymbols(); len(got) != 1 || got[0] != "FOO" {
		t.Errorf("expected unknown symbols [FOO], got %v", got)
	}
	if got := q.SortedAssetSymbols(); len(got) != 3 {
		t.Errorf("expected 3 asset symbols, got %v", got)
	}
}

func TestRunner_Normalize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(DefaultDecimalsTable(), zerolog.Nop())
	_, err := r.Normalize(ctx, []*domain.RawEvent{{WalletAddress: "w"}})
	if err == nil {
		t.Fatal("expected context error")
	}
}
