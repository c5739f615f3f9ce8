package ingestion

import (
	"context"
	"fmt"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// StoreSource reads events back from a raw event store.
type StoreSource struct {
	store storage.RawEventStore
	name  string
}

// NewStoreSource creates a source over store. name labels it in logs.
func NewStoreSource(store storage.RawEventStore, name string) *StoreSource {
	return &StoreSource{store: store, name: name}
}

// Name returns the source label.
func (s *StoreSource) Name() string {
	return s.name
}

// Events returns all stored events in insertion order.
// An empty store is reported as ErrMissingInput.
func (s *StoreSource) Events(ctx context.Context) ([]*domain.RawEvent, error) {
	events, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events from %s: %w", s.name, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: raw event store %s is empty", ErrMissingInput, s.name)
	}
	return events, nil
}

var _ EventSource = (*StoreSource)(nil)
