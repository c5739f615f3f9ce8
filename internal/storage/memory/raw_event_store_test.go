package memory

import (
	"context"
	"errors"
	"testing"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

func strPtr(s string) *string { return &s }

func makeRawEvent(id, wallet string, action domain.ActionKind) *domain.RawEvent {
	ts := int64(1629178166)
	return &domain.RawEvent{
		EventID:       id,
		WalletAddress: wallet,
		Action:        action,
		Timestamp:     &ts,
		TxHash:        "tx-" + id,
		Payload: &domain.ActionPayload{
			AssetSymbol: strPtr("USDC"),
			Amount:      strPtr("1000000"),
		},
	}
}

func TestRawEventStore_InsertAndGet(t *testing.T) {
	store := NewRawEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, makeRawEvent("e1", "w1", domain.ActionDeposit)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, makeRawEvent("e2", "w2", domain.ActionBorrow)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByWallet(ctx, "w1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(result) != 1 || result[0].EventID != "e1" {
		t.Errorf("Expected [e1], got %v", result)
	}

	count, _ := store.Count(ctx)
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestRawEventStore_DuplicateKey(t *testing.T) {
	store := NewRawEventStore()
	ctx := context.Background()

	e := makeRawEvent("e1", "w1", domain.ActionDeposit)
	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, e)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestRawEventStore_InsertBulk_Atomic(t *testing.T) {
	store := NewRawEventStore()
	ctx := context.Background()

	batch := []*domain.RawEvent{
		makeRawEvent("e1", "w1", domain.ActionDeposit),
		makeRawEvent("e2", "w1", domain.ActionBorrow),
		makeRawEvent("e1", "w2", domain.ActionRepay),
	}

	err := store.InsertBulk(ctx, batch)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("Expected no partial insert, got %d events", count)
	}

	if err := store.InsertBulk(ctx, batch[:2]); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	all, _ := store.GetAll(ctx)
	if len(all) != 2 || all[0].EventID != "e1" || all[1].EventID != "e2" {
		t.Errorf("Expected insertion order [e1 e2], got %v", all)
	}
}

func TestRawEventStore_InvalidInput(t *testing.T) {
	store := NewRawEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.RawEvent{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if err := store.InsertBulk(ctx, []*domain.RawEvent{nil}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestRawEventStore_CopyOnRead(t *testing.T) {
	store := NewRawEventStore()
	ctx := context.Background()

	e := makeRawEvent("e1", "w1", domain.ActionDeposit)
	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	*e.Payload.Amount = "999"

	got, _ := store.GetAll(ctx)
	if *got[0].Payload.Amount != "1000000" {
		t.Errorf("stored event mutated through caller pointer: %s", *got[0].Payload.Amount)
	}

	*got[0].Timestamp = 0
	again, _ := store.GetAll(ctx)
	if *again[0].Timestamp != 1629178166 {
		t.Errorf("stored event mutated through returned pointer")
	}
}
