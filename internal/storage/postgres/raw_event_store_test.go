package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

func TestRawEventStore_InsertAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawEventStore(pool)

	e := makeRawEvent("e1", "0xwallet1", domain.ActionDeposit, 1629178166)
	require.NoError(t, store.Insert(ctx, e))

	noPayload := &domain.RawEvent{EventID: "e2", WalletAddress: "0xwallet2", Action: domain.ActionRepay}
	require.NoError(t, store.Insert(ctx, noPayload))

	events, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)

	got := events[0]
	assert.Equal(t, e.EventID, got.EventID)
	assert.Equal(t, e.WalletAddress, got.WalletAddress)
	assert.Equal(t, e.Action, got.Action)
	assert.Equal(t, *e.Timestamp, *got.Timestamp)
	assert.Equal(t, e.TxHash, got.TxHash)
	assert.Equal(t, e.Network, got.Network)
	assert.Equal(t, *e.BlockNumber, *got.BlockNumber)
	assert.True(t, e.CreatedAt.Equal(*got.CreatedAt))
	require.NotNil(t, got.Payload)
	assert.Equal(t, "USDC", *got.Payload.AssetSymbol)
	assert.Equal(t, "2000000", *got.Payload.Amount)
	assert.Nil(t, got.Payload.BorrowRate)

	assert.Nil(t, events[1].Payload)
	assert.Nil(t, events[1].Timestamp)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRawEventStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawEventStore(pool)

	e := makeRawEvent("dup", "0xwallet1", domain.ActionDeposit, 1)
	require.NoError(t, store.Insert(ctx, e))

	err := store.Insert(ctx, e)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRawEventStore_InsertBulk_RollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawEventStore(pool)

	batch := []*domain.RawEvent{
		makeRawEvent("b1", "0xwallet1", domain.ActionDeposit, 1),
		makeRawEvent("b2", "0xwallet1", domain.ActionBorrow, 2),
		makeRawEvent("b1", "0xwallet2", domain.ActionRepay, 3),
	}

	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.InsertBulk(ctx, batch[:2]))

	events, err := store.GetByWallet(ctx, "0xwallet1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b1", events[0].EventID)
	assert.Equal(t, "b2", events[1].EventID)
}
