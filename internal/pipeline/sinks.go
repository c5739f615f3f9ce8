package pipeline

import (
	"context"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// Sink receives a completed score batch after the CSV outputs are written.
// Database sinks are append-only and return storage.ErrDuplicateKey when a
// wallet of the batch is already stored.
type Sink interface {
	Name() string
	Write(ctx context.Context, batch *domain.ScoreBatch) error
}

// ScoreStoreSink writes score records to a WalletScoreStore.
type ScoreStoreSink struct {
	store storage.WalletScoreStore
}

// NewScoreStoreSink creates a sink over store.
func NewScoreStoreSink(store storage.WalletScoreStore) *ScoreStoreSink {
	return &ScoreStoreSink{store: store}
}

// Name returns sink name.
func (s *ScoreStoreSink) Name() string { return "score_store" }

// Write inserts every score record in one batch.
func (s *ScoreStoreSink) Write(ctx context.Context, batch *domain.ScoreBatch) error {
	return s.store.InsertBulk(ctx, batch.Records())
}

// FeatureStoreSink writes feature rows to a WalletFeatureStore.
type FeatureStoreSink struct {
	store storage.WalletFeatureStore
}

// NewFeatureStoreSink creates a sink over store.
func NewFeatureStoreSink(store storage.WalletFeatureStore) *FeatureStoreSink {
	return &FeatureStoreSink{store: store}
}

// Name returns sink name.
func (s *FeatureStoreSink) Name() string { return "feature_store" }

// Write inserts every feature row in one batch.
func (s *FeatureStoreSink) Write(ctx context.Context, batch *domain.ScoreBatch) error {
	return s.store.InsertBulk(ctx, batch.Features())
}

var (
	_ Sink = (*ScoreStoreSink)(nil)
	_ Sink = (*FeatureStoreSink)(nil)
)
