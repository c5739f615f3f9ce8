package normalization

import (
	"context"

	"wallet-credit-score/internal/domain"
)

// cancelCheckInterval is how many events are processed between context checks.
const cancelCheckInterval = 4096

// Normalize processes a batch of raw events.
// Steps:
//  1. Flatten each event, dropping records without a wallet address
//  2. Tally issues, unknown symbols and NULL amounts
//  3. Return kept events in input order
func (r *Runner) Normalize(ctx context.Context, raws []*domain.RawEvent) (*Result, error) {
	quality := NewQualityStats()
	events := make([]*domain.NormalizedEvent, 0, len(raws))

	for i, raw := range raws {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		quality.EventsRead++

		ev, issues := Flatten(raw, r.table)
		for _, issue := range issues {
			quality.Record(issue)
		}
		if ev == nil {
			continue
		}

		quality.EventsKept++
		if !ev.HasAmount() {
			quality.AmountsMissing++
		}
		if ev.AssetSymbol != nil {
			quality.AssetSymbols[*ev.AssetSymbol]++
			if _, known := r.table.Decimals(*ev.AssetSymbol); !known {
				quality.UnknownSymbols[*ev.AssetSymbol]++
			}
		}

		events = append(events, ev)
	}

	r.logger.Debug().
		Int("read", quality.EventsRead).
		Int("kept", quality.EventsKept).
		Int("amounts_missing", quality.AmountsMissing).
		Int("unknown_symbols", len(quality.UnknownSymbols)).
		Msg("normalized batch")

	return &Result{Events: events, Quality: quality}, nil
}
