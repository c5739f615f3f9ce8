package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// WalletFeatureStore is an in-memory implementation of storage.WalletFeatureStore.
type WalletFeatureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletFeatures // keyed by wallet_address
}

// NewWalletFeatureStore creates a new in-memory wallet feature store.
func NewWalletFeatureStore() *WalletFeatureStore {
	return &WalletFeatureStore{
		data: make(map[string]*domain.WalletFeatures),
	}
}

// InsertBulk adds multiple feature rows atomically. Fails entire batch on any duplicate.
func (s *WalletFeatureStore) InsertBulk(_ context.Context, features []*domain.WalletFeatures) error {
	if len(features) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(features))
	for _, f := range features {
		if f == nil || f.WalletAddress == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[f.WalletAddress]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[f.WalletAddress]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[f.WalletAddress] = struct{}{}
	}

	for _, f := range features {
		c := *f
		s.data[f.WalletAddress] = &c
	}
	return nil
}

// GetByWallet retrieves features for a wallet. Returns ErrNotFound if not exists.
func (s *WalletFeatureStore) GetByWallet(_ context.Context, wallet string) (*domain.WalletFeatures, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.data[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *f
	return &c, nil
}

// GetAll retrieves all feature rows ordered by wallet_address ASC.
func (s *WalletFeatureStore) GetAll(_ context.Context) ([]*domain.WalletFeatures, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WalletFeatures, 0, len(s.data))
	for _, f := range s.data {
		c := *f
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletAddress < result[j].WalletAddress
	})
	return result, nil
}

var _ storage.WalletFeatureStore = (*WalletFeatureStore)(nil)
