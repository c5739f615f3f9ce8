package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

func TestSourceLoadStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSourceLoadStore(pool)

	_, err := store.Get(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	l := &domain.SourceLoad{SourceID: "abc", SourceName: "tx.json", EventCount: 42, LoadedAt: 1700000000}
	require.NoError(t, store.Insert(ctx, l))
	assert.ErrorIs(t, store.Insert(ctx, l), storage.ErrDuplicateKey)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, *l, *got)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
