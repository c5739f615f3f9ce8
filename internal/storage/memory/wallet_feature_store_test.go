package memory

import (
	"context"
	"errors"
	"testing"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

func makeFeatures(wallet string, deposit float64) *domain.WalletFeatures {
	return &domain.WalletFeatures{
		WalletAggregate: domain.WalletAggregate{
			WalletAddress:     wallet,
			TotalTransactions: 1,
			TotalDepositValue: deposit,
			DepositCount:      1,
		},
		AvgTxAmount: deposit,
	}
}

func TestWalletFeatureStore_InsertAndGet(t *testing.T) {
	store := NewWalletFeatureStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.WalletFeatures{makeFeatures("w2", 2), makeFeatures("w1", 1)})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	f, err := store.GetByWallet(ctx, "w1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if f.TotalDepositValue != 1 {
		t.Errorf("Expected deposit 1, got %v", f.TotalDepositValue)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 2 || all[0].WalletAddress != "w1" {
		t.Errorf("Expected wallet order [w1 w2], got %v", all)
	}
}

func TestWalletFeatureStore_Errors(t *testing.T) {
	store := NewWalletFeatureStore()
	ctx := context.Background()

	if _, err := store.GetByWallet(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.InsertBulk(ctx, []*domain.WalletFeatures{makeFeatures("w1", 1)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	err := store.InsertBulk(ctx, []*domain.WalletFeatures{makeFeatures("w2", 1), makeFeatures("w1", 1)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.GetByWallet(ctx, "w2"); !errors.Is(err, storage.ErrNotFound) {
		t.Error("failed batch must not insert any row")
	}
}
