package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// Manager loads events from a source into the raw event store.
// It enforces deterministic ordering and uses storage layer for duplicate rejection.
type Manager struct {
	source    EventSource
	rawStore  storage.RawEventStore
	loadStore storage.SourceLoadStore
	clock     func() time.Time
	logger    zerolog.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source    EventSource
	RawStore  storage.RawEventStore
	LoadStore storage.SourceLoadStore // optional; enables skip of already-loaded sources
	Clock     func() time.Time        // default: time.Now
	Logger    zerolog.Logger
}

// NewManager creates a new ingestion manager with the provided source and stores.
func NewManager(opts ManagerOptions) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		source:    opts.Source,
		rawStore:  opts.RawStore,
		loadStore: opts.LoadStore,
		clock:     clock,
		logger:    opts.Logger,
	}
}

// LoadResult summarizes one Ingest call.
type LoadResult struct {
	SourceID string // empty when the source cannot be fingerprinted
	Events   int
	Skipped  bool // source content was loaded before
}

// Ingest reads the source and stores its events in one atomic batch.
// When the source has a fingerprint already recorded in the load store, nothing is written.
// Duplicates are rejected by the storage layer (ErrDuplicateKey).
func (m *Manager) Ingest(ctx context.Context) (*LoadResult, error) {
	if m.source == nil || m.rawStore == nil {
		return nil, fmt.Errorf("ingest: %w: source and raw store are required", storage.ErrInvalidInput)
	}

	result := &LoadResult{}

	if fp, ok := m.source.(Fingerprinter); ok && m.loadStore != nil {
		id, err := fp.Fingerprint(ctx)
		if err != nil {
			return nil, err
		}
		result.SourceID = id
	}

	if result.SourceID != "" {
		prev, err := m.loadStore.Get(ctx, result.SourceID)
		switch {
		case err == nil:
			m.logger.Info().
				Str("source", m.source.Name()).
				Str("source_id", result.SourceID).
				Int64("loaded_at", prev.LoadedAt).
				Msg("source already loaded, skipping")
			result.Skipped = true
			result.Events = prev.EventCount
			return result, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("check source load: %w", err)
		}
	}

	events, err := m.source.Events(ctx)
	if err != nil {
		return nil, err
	}

	// Enforce deterministic ordering
	SortRawEvents(events)

	if err := m.rawStore.InsertBulk(ctx, events); err != nil {
		return nil, fmt.Errorf("store events from %s: %w", m.source.Name(), err)
	}
	result.Events = len(events)

	if result.SourceID != "" {
		load := &domain.SourceLoad{
			SourceID:   result.SourceID,
			SourceName: m.source.Name(),
			EventCount: len(events),
			LoadedAt:   m.clock().Unix(),
		}
		if err := m.loadStore.Insert(ctx, load); err != nil {
			return nil, fmt.Errorf("record source load: %w", err)
		}
	}

	m.logger.Info().
		Str("source", m.source.Name()).
		Int("events", result.Events).
		Msg("source loaded")

	return result, nil
}
