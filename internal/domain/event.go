package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawEvent is one transaction record as ingested from a transaction source.
// Corresponds to raw_events table in PostgreSQL.
type RawEvent struct {
	EventID       string     // source object id, or a derived hash when absent
	WalletAddress string     // actor wallet (userWallet in the source export)
	Action        ActionKind // open set, see ActionKind
	Timestamp     *int64     // Unix seconds, NULL if the record had none
	TxHash        string     // used only for distinct-transaction counting
	LogID         string
	Network       string
	Protocol      string
	BlockNumber   *int64
	CreatedAt     *time.Time
	Payload       *ActionPayload // NULL when the record had no actionData object
}

// ActionPayload is the nested, action-specific part of a RawEvent.
// Values are kept verbatim (string content or JSON number literal);
// numeric coercion is the normalizer's job.
type ActionPayload struct {
	Type                    string
	AssetSymbol             *string
	Amount                  *string // token base units, expected to be all digits
	AssetPriceUSD           *string
	BorrowRate              *string
	BorrowRateMode          *string
	VariableTokenDebt       *string
	StableTokenDebt         *string
	CollateralAmount        *string
	CollateralAssetPriceUSD *string
	PrincipalAmount         *string
	BorrowAssetPriceUSD     *string
}

// NormalizedEvent is a RawEvent flattened into the uniform event schema.
// Amount is NULL (Valid=false) when the raw amount or asset symbol was unusable;
// that is distinct from a true zero amount.
type NormalizedEvent struct {
	EventID       string
	WalletAddress string
	Action        ActionKind
	Timestamp     *int64
	TxHash        string
	AssetSymbol   *string
	RawAmount     *string
	Amount        decimal.NullDecimal

	// Coerced payload numerics, 0 when absent or non-numeric.
	AssetPriceUSD           float64
	BorrowRate              float64
	VariableTokenDebt       float64
	StableTokenDebt         float64
	CollateralAmount        float64
	CollateralAssetPriceUSD float64
	PrincipalAmount         float64
	BorrowAssetPriceUSD     float64
}

// HasAmount reports whether the event carries a usable decimal amount.
func (e *NormalizedEvent) HasAmount() bool {
	return e.Amount.Valid
}
