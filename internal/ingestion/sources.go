package ingestion

import (
	"context"
	"errors"

	"wallet-credit-score/internal/domain"
)

// ErrMissingInput is returned when a source artifact does not exist.
var ErrMissingInput = errors.New("missing input")

// EventSource provides raw transaction events.
type EventSource interface {
	// Name identifies the source in logs and error messages.
	Name() string

	// Events returns all events the source holds. Order is source order;
	// Manager enforces deterministic ordering before storage.
	Events(ctx context.Context) ([]*domain.RawEvent, error)
}

// Fingerprinter is implemented by sources whose content can be hashed.
// Manager uses the fingerprint to skip sources that were already loaded.
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (string, error)
}
