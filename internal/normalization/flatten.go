package normalization

import (
	"math"
	"strconv"
	"strings"

	"wallet-credit-score/internal/domain"
)

// Flatten maps a raw event onto the uniform NormalizedEvent schema.
//
// A nil event is returned when the record has no wallet address; such records
// cannot be grouped. Records with no payload are kept with zero numerics and a
// NULL amount. raw is not modified.
func Flatten(raw *domain.RawEvent, table DecimalsTable) (*domain.NormalizedEvent, []Issue) {
	if raw == nil || strings.TrimSpace(raw.WalletAddress) == "" {
		return nil, []Issue{IssueMissingWallet}
	}

	ev := &domain.NormalizedEvent{
		EventID:       raw.EventID,
		WalletAddress: raw.WalletAddress,
		Action:        raw.Action,
		Timestamp:     copyInt64(raw.Timestamp),
		TxHash:        raw.TxHash,
	}

	p := raw.Payload
	if p == nil {
		return ev, []Issue{IssueNoPayload, IssueMissingAmount}
	}

	var issues []Issue

	ev.AssetSymbol = copyString(p.AssetSymbol)
	ev.RawAmount = copyString(p.Amount)

	amount, issue := table.NormalizeAmount(p.AssetSymbol, p.Amount)
	ev.Amount = amount
	if issue != IssueNone {
		issues = append(issues, issue)
	}

	nonNumeric := false
	coerce := func(v *string) float64 {
		f, ok := coerceNumeric(v)
		if !ok {
			nonNumeric = true
		}
		return f
	}

	ev.AssetPriceUSD = coerce(p.AssetPriceUSD)
	ev.BorrowRate = coerce(p.BorrowRate)
	ev.VariableTokenDebt = coerce(p.VariableTokenDebt)
	ev.StableTokenDebt = coerce(p.StableTokenDebt)
	ev.CollateralAmount = coerce(p.CollateralAmount)
	ev.CollateralAssetPriceUSD = coerce(p.CollateralAssetPriceUSD)
	ev.PrincipalAmount = coerce(p.PrincipalAmount)
	ev.BorrowAssetPriceUSD = coerce(p.BorrowAssetPriceUSD)

	if nonNumeric {
		issues = append(issues, IssueNonNumericField)
	}

	return ev, issues
}

// coerceNumeric parses v as a float. Absent values yield (0, true);
// empty, unparsable or non-finite values yield (0, false).
func coerceNumeric(v *string) (float64, bool) {
	if v == nil {
		return 0, true
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
