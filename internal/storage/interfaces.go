package storage

import (
	"context"

	"wallet-credit-score/internal/domain"
)

// RawEventStore provides access to raw_events storage.
type RawEventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.RawEvent) error

	// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, events []*domain.RawEvent) error

	// GetAll retrieves all events in insertion order.
	GetAll(ctx context.Context) ([]*domain.RawEvent, error)

	// GetByWallet retrieves all events for a wallet in insertion order.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.RawEvent, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)
}

// WalletFeatureStore provides access to wallet_features storage.
type WalletFeatureStore interface {
	// InsertBulk adds feature rows atomically. Returns ErrDuplicateKey if any wallet exists.
	InsertBulk(ctx context.Context, features []*domain.WalletFeatures) error

	// GetByWallet retrieves features for a wallet. Returns ErrNotFound if not exists.
	GetByWallet(ctx context.Context, wallet string) (*domain.WalletFeatures, error)

	// GetAll retrieves all feature rows ordered by wallet_address ASC.
	GetAll(ctx context.Context) ([]*domain.WalletFeatures, error)
}

// WalletScoreStore provides access to wallet_scores storage.
type WalletScoreStore interface {
	// InsertBulk adds score rows atomically. Returns ErrDuplicateKey if any wallet exists.
	InsertBulk(ctx context.Context, scores []*domain.WalletScoreRecord) error

	// GetByWallet retrieves the score for a wallet. Returns ErrNotFound if not exists.
	GetByWallet(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error)

	// GetTop retrieves up to limit scores ordered by final_credit_score DESC, wallet_address ASC.
	GetTop(ctx context.Context, limit int) ([]*domain.WalletScoreRecord, error)

	// GetAll retrieves all scores ordered by wallet_address ASC.
	GetAll(ctx context.Context) ([]*domain.WalletScoreRecord, error)
}

// SourceLoadStore tracks which source artifacts have been loaded.
// This enables re-running ingestion without duplicating events.
type SourceLoadStore interface {
	// Insert records a completed load. Returns ErrDuplicateKey if source_id exists.
	Insert(ctx context.Context, l *domain.SourceLoad) error

	// Get returns the load record for a source. Returns ErrNotFound if never loaded.
	Get(ctx context.Context, sourceID string) (*domain.SourceLoad, error)

	// GetAll returns all loads ordered by loaded_at ASC, source_id ASC.
	GetAll(ctx context.Context) ([]*domain.SourceLoad, error)
}
