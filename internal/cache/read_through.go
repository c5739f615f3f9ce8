package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// ReadThrough serves score lookups from the cache and falls back to the store,
// populating the cache on a miss. Cache failures degrade to store reads.
type ReadThrough struct {
	cache  *ScoreCache
	store  storage.WalletScoreStore
	logger zerolog.Logger
}

// NewReadThrough creates a read-through reader.
func NewReadThrough(cache *ScoreCache, store storage.WalletScoreStore, logger zerolog.Logger) *ReadThrough {
	return &ReadThrough{cache: cache, store: store, logger: logger}
}

// GetByWallet returns the score for wallet.
func (r *ReadThrough) GetByWallet(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error) {
	rec, err := r.cache.Get(ctx, wallet)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn().Err(err).Str("wallet", wallet).Msg("score cache read failed")
	}

	rec, err = r.store.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Put(ctx, rec); err != nil {
		r.logger.Warn().Err(err).Str("wallet", wallet).Msg("score cache fill failed")
	}
	return rec, nil
}

// GetTop reads through to the store.
func (r *ReadThrough) GetTop(ctx context.Context, limit int) ([]*domain.WalletScoreRecord, error) {
	return r.store.GetTop(ctx, limit)
}
