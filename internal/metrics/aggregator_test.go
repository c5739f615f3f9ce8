package metrics

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"wallet-credit-score/internal/domain"
)

func amountPtr(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func symPtr(s string) *string { return &s }

func tsPtr(i int64) *int64 { return &i }

// Helper to create a normalized event.
func makeEvent(wallet string, action domain.ActionKind, tx string, ts int64, symbol, amount string) *domain.NormalizedEvent {
	ev := &domain.NormalizedEvent{
		WalletAddress: wallet,
		Action:        action,
		TxHash:        tx,
		Timestamp:     tsPtr(ts),
	}
	if symbol != "" {
		ev.AssetSymbol = symPtr(symbol)
	}
	if amount != "" {
		ev.Amount = amountPtr(amount)
	}
	return ev
}

func TestAggregateWallets_Basic(t *testing.T) {
	events := []*domain.NormalizedEvent{
		makeEvent("w1", domain.ActionDeposit, "t1", 1000, "USDC", "10"),
		makeEvent("w2", domain.ActionBorrow, "t2", 500, "DAI", "3"),
		makeEvent("w1", domain.ActionBorrow, "t3", 900, "WETH", "4"),
		makeEvent("w1", domain.ActionRepay, "t3", 2000, "WETH", "2"),
		makeEvent("w1", domain.ActionRedeemUnderlying, "t4", 3000, "USDC", "5"),
	}

	aggs, err := AggregateWallets(context.Background(), events)
	if err != nil {
		t.Fatalf("AggregateWallets: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 wallets, got %d", len(aggs))
	}
	if aggs[0].WalletAddress != "w1" || aggs[1].WalletAddress != "w2" {
		t.Errorf("expected first-appearance order [w1 w2], got [%s %s]", aggs[0].WalletAddress, aggs[1].WalletAddress)
	}

	w1 := aggs[0]
	if w1.TotalTransactions != 3 {
		t.Errorf("expected 3 distinct tx hashes, got %d", w1.TotalTransactions)
	}
	if w1.FirstTxTimestamp != 900 || w1.LastTxTimestamp != 3000 {
		t.Errorf("expected first=900 last=3000, got %d %d", w1.FirstTxTimestamp, w1.LastTxTimestamp)
	}
	if w1.NumUniqueAssets != 2 {
		t.Errorf("expected 2 unique assets, got %d", w1.NumUniqueAssets)
	}
	if w1.TotalDepositValue != 10 || w1.TotalBorrowValue != 4 || w1.TotalRepayValue != 2 {
		t.Errorf("unexpected sums: deposit=%v borrow=%v repay=%v", w1.TotalDepositValue, w1.TotalBorrowValue, w1.TotalRepayValue)
	}
	if w1.DepositCount != 1 || w1.BorrowCount != 1 || w1.RepayCount != 1 || w1.LiquidationCallCount != 0 {
		t.Errorf("unexpected counts: %+v", w1)
	}
}

func TestAggregateWallets_NullAmountContributesZero(t *testing.T) {
	events := []*domain.NormalizedEvent{
		makeEvent("w1", domain.ActionDeposit, "t1", 1, "USDC", "1.5"),
		makeEvent("w1", domain.ActionDeposit, "t2", 2, "USDC", ""),
	}

	aggs, err := AggregateWallets(context.Background(), events)
	if err != nil {
		t.Fatalf("AggregateWallets: %v", err)
	}
	if aggs[0].TotalDepositValue != 1.5 {
		t.Errorf("expected deposit 1.5, got %v", aggs[0].TotalDepositValue)
	}
	if aggs[0].DepositCount != 2 {
		t.Errorf("expected 2 deposits counted, got %d", aggs[0].DepositCount)
	}
}

func TestAggregateWallets_Liquidations(t *testing.T) {
	events := make([]*domain.NormalizedEvent, 0, 3)
	for i, tx := range []string{"l1", "l2", "l3"} {
		ev := makeEvent("w3", domain.ActionLiquidationCall, tx, int64(100+i), "", "")
		ev.PrincipalAmount = 0.1
		ev.CollateralAmount = 0.2
		events = append(events, ev)
	}

	aggs, err := AggregateWallets(context.Background(), events)
	if err != nil {
		t.Fatalf("AggregateWallets: %v", err)
	}
	agg := aggs[0]
	if agg.LiquidationCallCount != 3 {
		t.Errorf("expected 3 liquidations, got %d", agg.LiquidationCallCount)
	}
	// exact decimal accumulation: 0.1+0.1+0.1 == 0.3
	if agg.TotalLiquidationAmount != 0.3 {
		t.Errorf("expected liquidation amount 0.3, got %v", agg.TotalLiquidationAmount)
	}
	if agg.TotalCollateralLiquidated != 0.6 {
		t.Errorf("expected collateral 0.6, got %v", agg.TotalCollateralLiquidated)
	}
}

func TestAggregateWallets_MissingTimestampsAndHashes(t *testing.T) {
	ev1 := makeEvent("w1", domain.ActionDeposit, "", 0, "USDC", "1")
	ev1.Timestamp = nil
	ev2 := makeEvent("w1", domain.ActionDeposit, "", 0, "USDC", "1")
	ev2.Timestamp = nil

	aggs, err := AggregateWallets(context.Background(), []*domain.NormalizedEvent{ev1, ev2})
	if err != nil {
		t.Fatalf("AggregateWallets: %v", err)
	}
	if aggs[0].TotalTransactions != 0 {
		t.Errorf("empty hashes must not count, got %d", aggs[0].TotalTransactions)
	}
	if aggs[0].FirstTxTimestamp != 0 || aggs[0].LastTxTimestamp != 0 {
		t.Errorf("expected zero timestamps, got %d %d", aggs[0].FirstTxTimestamp, aggs[0].LastTxTimestamp)
	}
}

func TestAggregateWallets_OrderIndependent(t *testing.T) {
	var events []*domain.NormalizedEvent
	amounts := []string{"0.1", "0.2", "0.3", "1234.000001", "0.000000000000000001", "7"}
	for i := 0; i < 60; i++ {
		wallet := []string{"a", "b", "c"}[i%3]
		action := []domain.ActionKind{domain.ActionDeposit, domain.ActionBorrow, domain.ActionRepay, domain.ActionLiquidationCall}[i%4]
		ev := makeEvent(wallet, action, "tx"+string(rune('a'+i%26)), int64(i*1000), "WETH", amounts[i%len(amounts)])
		ev.PrincipalAmount = float64(i) * 0.1
		events = append(events, ev)
	}

	base, err := AggregateWallets(context.Background(), events)
	if err != nil {
		t.Fatalf("AggregateWallets: %v", err)
	}
	byWallet := make(map[string]domain.WalletAggregate)
	for _, a := range base {
		byWallet[a.WalletAddress] = *a
	}

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 10; run++ {
		shuffled := make([]*domain.NormalizedEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := AggregateWallets(context.Background(), shuffled)
		if err != nil {
			t.Fatalf("AggregateWallets: %v", err)
		}
		for _, a := range got {
			if *a != byWallet[a.WalletAddress] {
				t.Fatalf("run %d: wallet %s differs:\n%+v\n%+v", run, a.WalletAddress, *a, byWallet[a.WalletAddress])
			}
		}
	}
}

func TestAggregateWallets_Empty(t *testing.T) {
	aggs, err := AggregateWallets(context.Background(), nil)
	if err != nil {
		t.Fatalf("AggregateWallets: %v", err)
	}
	if len(aggs) != 0 {
		t.Errorf("expected no wallets, got %d", len(aggs))
	}
}

func TestAggregateWallets_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateWallets(ctx, []*domain.NormalizedEvent{makeEvent("w", domain.ActionDeposit, "t", 1, "", "")})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
