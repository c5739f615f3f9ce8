package ingestion

import (
	"errors"
	"sort"

	"wallet-credit-score/internal/domain"
)

// ErrInvalidOrdering is returned when events are not properly ordered.
var ErrInvalidOrdering = errors.New("events are not in deterministic order")

// SortRawEvents orders events by (timestamp ASC with missing last, tx_hash ASC, log_id ASC, event_id ASC).
func SortRawEvents(events []*domain.RawEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return compareRawEvents(events[i], events[j]) < 0
	})
}

// ValidateRawEventOrdering checks if events are properly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateRawEventOrdering(events []*domain.RawEvent) error {
	for i := 1; i < len(events); i++ {
		if compareRawEvents(events[i-1], events[i]) > 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareRawEvents returns negative, zero or positive as a sorts before, with or after b.
func compareRawEvents(a, b *domain.RawEvent) int {
	switch {
	case a.Timestamp == nil && b.Timestamp != nil:
		return 1
	case a.Timestamp != nil && b.Timestamp == nil:
		return -1
	case a.Timestamp != nil && b.Timestamp != nil && *a.Timestamp != *b.Timestamp:
		if *a.Timestamp < *b.Timestamp {
			return -1
		}
		return 1
	}
	if c := compareStrings(a.TxHash, b.TxHash); c != 0 {
		return c
	}
	if c := compareStrings(a.LogID, b.LogID); c != 0 {
		return c
	}
	return compareStrings(a.EventID, b.EventID)
}

func compareStrings(a, b string) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
