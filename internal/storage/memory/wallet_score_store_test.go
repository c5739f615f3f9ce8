package memory

import (
	"context"
	"errors"
	"testing"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

func TestWalletScoreStore_GetTop(t *testing.T) {
	store := NewWalletScoreStore()
	ctx := context.Background()

	scores := []*domain.WalletScoreRecord{
		{WalletAddress: "c", FinalCreditScore: 700},
		{WalletAddress: "a", FinalCreditScore: 300},
		{WalletAddress: "b", FinalCreditScore: 700},
		{WalletAddress: "d", FinalCreditScore: 1000},
	}
	if err := store.InsertBulk(ctx, scores); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	top, err := store.GetTop(ctx, 3)
	if err != nil {
		t.Fatalf("GetTop failed: %v", err)
	}
	want := []string{"d", "b", "c"}
	if len(top) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(top))
	}
	for i, w := range want {
		if top[i].WalletAddress != w {
			t.Errorf("position %d: expected %s, got %s", i, w, top[i].WalletAddress)
		}
	}

	if _, err := store.GetTop(ctx, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestWalletScoreStore_DuplicateAndNotFound(t *testing.T) {
	store := NewWalletScoreStore()
	ctx := context.Background()

	r := &domain.WalletScoreRecord{WalletAddress: "w1", FinalCreditScore: 500, RunID: "run-1"}
	if err := store.InsertBulk(ctx, []*domain.WalletScoreRecord{r}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	if err := store.InsertBulk(ctx, []*domain.WalletScoreRecord{r}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	got, err := store.GetByWallet(ctx, "w1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("Expected run-1, got %s", got.RunID)
	}

	if _, err := store.GetByWallet(ctx, "w2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
