package pipeline

import (
	"context"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// Fixture wallet addresses.
const (
	FixtureWalletDepositor  = "0x00000000000000000000000000000000000000a1"
	FixtureWalletRepayer    = "0x00000000000000000000000000000000000000a2"
	FixtureWalletLiquidated = "0x00000000000000000000000000000000000000a3"
	FixtureWalletLeveraged  = "0x00000000000000000000000000000000000000a4"
)

// FixtureEvents returns a small transaction set for demonstration and tests.
// It covers a deposit-only wallet, a full repayer, a thrice-liquidated wallet,
// a leveraged borrower and a few malformed records.
func FixtureEvents() []*domain.RawEvent {
	const day = int64(86400)
	const t0 = int64(1617000000) // 2021-03-29

	return []*domain.RawEvent{
		// deposit-only: 1 USDC
		fixtureEvent("fx_001", FixtureWalletDepositor, domain.ActionDeposit, "0xtx001", t0, "USDC", "1000000"),

		// full repayer: borrows 100 USDC and repays it
		fixtureEvent("fx_002", FixtureWalletRepayer, domain.ActionBorrow, "0xtx002", t0, "USDC", "100000000"),
		fixtureEvent("fx_003", FixtureWalletRepayer, domain.ActionRepay, "0xtx003", t0+3*day, "USDC", "100000000"),

		// three liquidations, nothing else
		fixtureLiquidation("fx_004", FixtureWalletLiquidated, "0xtx004", t0+day, "250", "300"),
		fixtureLiquidation("fx_005", FixtureWalletLiquidated, "0xtx005", t0+2*day, "125", "150"),
		fixtureLiquidation("fx_006", FixtureWalletLiquidated, "0xtx006", t0+5*day, "10", "12"),

		// leveraged borrower: 2 WETH deposit, 5 WETH borrow, 1 WETH repay
		fixtureEvent("fx_007", FixtureWalletLeveraged, domain.ActionDeposit, "0xtx007", t0, "WETH", "2000000000000000000"),
		fixtureEvent("fx_008", FixtureWalletLeveraged, domain.ActionBorrow, "0xtx008", t0+day, "WETH", "5000000000000000000"),
		fixtureEvent("fx_009", FixtureWalletLeveraged, domain.ActionRepay, "0xtx009", t0+10*day, "WETH", "1000000000000000000"),
		fixtureEvent("fx_010", FixtureWalletLeveraged, domain.ActionRedeemUnderlying, "0xtx010", t0+11*day, "WETH", "500000000000000000"),

		// malformed: non-digit amount and unmapped symbol, both kept
		fixtureEvent("fx_011", FixtureWalletDepositor, domain.ActionDeposit, "0xtx011", t0+day, "USDC", "1e6"),
		fixtureEvent("fx_012", FixtureWalletDepositor, domain.ActionDeposit, "0xtx012", t0+2*day, "XYZ", "5"),

		// malformed: no wallet, dropped
		fixtureEvent("fx_013", "", domain.ActionDeposit, "0xtx013", t0, "USDC", "1"),
	}
}

// LoadFixtures populates the raw event store with FixtureEvents.
func LoadFixtures(ctx context.Context, store storage.RawEventStore) error {
	return store.InsertBulk(ctx, FixtureEvents())
}

func fixtureEvent(id, wallet string, action domain.ActionKind, tx string, ts int64, symbol, amount string) *domain.RawEvent {
	return &domain.RawEvent{
		EventID:       id,
		WalletAddress: wallet,
		Action:        action,
		TxHash:        tx,
		Timestamp:     &ts,
		Network:       "Polygon",
		Protocol:      "Aave",
		Payload: &domain.ActionPayload{
			Type:        string(action),
			AssetSymbol: &symbol,
			Amount:      &amount,
		},
	}
}

func fixtureLiquidation(id, wallet, tx string, ts int64, principal, collateral string) *domain.RawEvent {
	return &domain.RawEvent{
		EventID:       id,
		WalletAddress: wallet,
		Action:        domain.ActionLiquidationCall,
		TxHash:        tx,
		Timestamp:     &ts,
		Network:       "Polygon",
		Protocol:      "Aave",
		Payload: &domain.ActionPayload{
			Type:             "LiquidationCall",
			PrincipalAmount:  &principal,
			CollateralAmount: &collateral,
		},
	}
}
