package normalization

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is applied to asset symbols missing from a DecimalsTable.
const DefaultDecimals int32 = 18

// builtinDecimals holds on-chain decimal counts for the reserve assets seen in the lending exports.
var builtinDecimals = map[string]int32{
	"WETH":   18,
	"DAI":    18,
	"USDC":   6,
	"USDT":   6,
	"WBTC":   8,
	"AAVE":   18,
	"WMATIC": 18,
	"LINK":   18,
	"CRV":    18,
	"BAL":    18,
	"SUSHI":  18,
	"USDC.e": 6,
	"EURT":   6,
	"stETH":  18,
	"FRAX":   18,
	"CRVUSD": 18,
	"LUSD":   18,
	"WPOL":   18,
}

// DecimalsTable maps asset symbols to decimal counts.
// It is immutable once built; lookups never fail and fall back to the table default.
type DecimalsTable struct {
	symbols  map[string]int32
	fallback int32
}

// NewDecimalsTable builds a table from a symbol map and a fallback.
// The map is copied.
func NewDecimalsTable(symbols map[string]int32, fallback int32) DecimalsTable {
	m := make(map[string]int32, len(symbols))
	for k, v := range symbols {
		m[k] = v
	}
	return DecimalsTable{symbols: m, fallback: fallback}
}

// DefaultDecimalsTable returns the built-in table with DefaultDecimals as fallback.
func DefaultDecimalsTable() DecimalsTable {
	return NewDecimalsTable(builtinDecimals, DefaultDecimals)
}

// WithOverrides returns a new table with symbols added or replaced.
func (t DecimalsTable) WithOverrides(symbols map[string]int32) DecimalsTable {
	next := NewDecimalsTable(t.symbols, t.fallback)
	for k, v := range symbols {
		next.symbols[k] = v
	}
	return next
}

// WithFallback returns a new table using fallback for unmapped symbols.
func (t DecimalsTable) WithFallback(fallback int32) DecimalsTable {
	next := NewDecimalsTable(t.symbols, fallback)
	return next
}

// Decimals returns the decimal count for symbol and whether the symbol is mapped.
func (t DecimalsTable) Decimals(symbol string) (int32, bool) {
	if d, ok := t.symbols[symbol]; ok {
		return d, true
	}
	return t.fallback, false
}

// Fallback returns the decimal count used for unmapped symbols.
func (t DecimalsTable) Fallback() int32 {
	return t.fallback
}

// Symbols returns mapped symbols in lexical order.
func (t DecimalsTable) Symbols() []string {
	out := make([]string, 0, len(t.symbols))
	for k := range t.symbols {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NormalizeAmount converts a raw base-unit amount into token units: raw / 10^decimals(symbol).
//
// The result is NULL (Valid=false) when raw is absent, raw is not made up entirely of
// ASCII digits (negative, fractional, hex, empty), or symbol is absent. The returned Issue
// names the reason; IssueUnknownSymbol accompanies a valid amount computed with the fallback.
// It never fails.
func (t DecimalsTable) NormalizeAmount(symbol, raw *string) (decimal.NullDecimal, Issue) {
	if raw == nil {
		return decimal.NullDecimal{}, IssueMissingAmount
	}
	if !isDigits(*raw) {
		return decimal.NullDecimal{}, IssueNonDigitAmount
	}
	if symbol == nil {
		return decimal.NullDecimal{}, IssueMissingSymbol
	}

	units, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.NullDecimal{}, IssueNonDigitAmount
	}

	decimals, known := t.Decimals(*symbol)
	amount := decimal.NewNullDecimal(units.Shift(-decimals))
	if !known {
		return amount, IssueUnknownSymbol
	}
	return amount, IssueNone
}

// isDigits reports whether s is non-empty and consists only of 0-9.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
