package metrics

import (
	"context"

	"github.com/shopspring/decimal"

	"wallet-credit-score/internal/domain"
)

// cancelCheckInterval is how many events are scanned between context checks.
const cancelCheckInterval = 4096

// walletAccumulator holds running state for one wallet during the scan.
// Sums are exact decimals so the result does not depend on event order.
type walletAccumulator struct {
	agg          *domain.WalletAggregate
	txHashes     map[string]struct{}
	symbols      map[string]struct{}
	hasTimestamp bool

	deposit    decimal.Decimal
	borrow     decimal.Decimal
	repay      decimal.Decimal
	principal  decimal.Decimal
	collateral decimal.Decimal
}

func newWalletAccumulator(wallet string) *walletAccumulator {
	return &walletAccumulator{
		agg:      &domain.WalletAggregate{WalletAddress: wallet},
		txHashes: make(map[string]struct{}),
		symbols:  make(map[string]struct{}),
	}
}

func (w *walletAccumulator) add(ev *domain.NormalizedEvent) {
	if ev.TxHash != "" {
		w.txHashes[ev.TxHash] = struct{}{}
	}
	if ev.AssetSymbol != nil {
		w.symbols[*ev.AssetSymbol] = struct{}{}
	}

	if ev.Timestamp != nil {
		ts := *ev.Timestamp
		if !w.hasTimestamp || ts < w.agg.FirstTxTimestamp {
			w.agg.FirstTxTimestamp = ts
		}
		if !w.hasTimestamp || ts > w.agg.LastTxTimestamp {
			w.agg.LastTxTimestamp = ts
		}
		w.hasTimestamp = true
	}

	amount := decimal.Zero
	if ev.HasAmount() {
		amount = ev.Amount.Decimal
	}

	// Exact match only; other action kinds contribute to counts of
	// transactions and assets but to no sum.
	switch ev.Action {
	case domain.ActionDeposit:
		w.deposit = w.deposit.Add(amount)
		w.agg.DepositCount++
	case domain.ActionBorrow:
		w.borrow = w.borrow.Add(amount)
		w.agg.BorrowCount++
	case domain.ActionRepay:
		w.repay = w.repay.Add(amount)
		w.agg.RepayCount++
	case domain.ActionLiquidationCall:
		w.principal = w.principal.Add(decimal.NewFromFloat(ev.PrincipalAmount))
		w.collateral = w.collateral.Add(decimal.NewFromFloat(ev.CollateralAmount))
		w.agg.LiquidationCallCount++
	}
}

func (w *walletAccumulator) finish() *domain.WalletAggregate {
	w.agg.TotalTransactions = len(w.txHashes)
	w.agg.NumUniqueAssets = len(w.symbols)
	w.agg.TotalDepositValue = w.deposit.InexactFloat64()
	w.agg.TotalBorrowValue = w.borrow.InexactFloat64()
	w.agg.TotalRepayValue = w.repay.InexactFloat64()
	w.agg.TotalLiquidationAmount = w.principal.InexactFloat64()
	w.agg.TotalCollateralLiquidated = w.collateral.InexactFloat64()
	return w.agg
}

// AggregateWallets groups events by wallet address in a single pass.
//
// One aggregate is returned per distinct wallet, in order of first appearance.
// Wallets without any timestamped event keep first/last timestamps of 0.
// Empty input yields an empty slice.
func AggregateWallets(ctx context.Context, events []*domain.NormalizedEvent) ([]*domain.WalletAggregate, error) {
	byWallet := make(map[string]*walletAccumulator)
	order := make([]string, 0)

	for i, ev := range events {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if ev == nil || ev.WalletAddress == "" {
			continue
		}

		acc, ok := byWallet[ev.WalletAddress]
		if !ok {
			acc = newWalletAccumulator(ev.WalletAddress)
			byWallet[ev.WalletAddress] = acc
			order = append(order, ev.WalletAddress)
		}
		acc.add(ev)
	}

	result := make([]*domain.WalletAggregate, 0, len(order))
	for _, wallet := range order {
		result = append(result, byWallet[wallet].finish())
	}
	return result, nil
}
