package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// WalletScoreStore is an in-memory implementation of storage.WalletScoreStore.
type WalletScoreStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletScoreRecord // keyed by wallet_address
}

// NewWalletScoreStore creates a new in-memory wallet score store.
func NewWalletScoreStore() *WalletScoreStore {
	return &WalletScoreStore{
		data: make(map[string]*domain.WalletScoreRecord),
	}
}

// InsertBulk adds multiple scores atomically. Fails entire batch on any duplicate.
func (s *WalletScoreStore) InsertBulk(_ context.Context, scores []*domain.WalletScoreRecord) error {
	if len(scores) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(scores))
	for _, r := range scores {
		if r == nil || r.WalletAddress == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.WalletAddress]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.WalletAddress]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.WalletAddress] = struct{}{}
	}

	for _, r := range scores {
		c := *r
		s.data[r.WalletAddress] = &c
	}
	return nil
}

// GetByWallet retrieves the score for a wallet. Returns ErrNotFound if not exists.
func (s *WalletScoreStore) GetByWallet(_ context.Context, wallet string) (*domain.WalletScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *r
	return &c, nil
}

// GetTop retrieves up to limit scores ordered by final score DESC, wallet ASC.
func (s *WalletScoreStore) GetTop(ctx context.Context, limit int) ([]*domain.WalletScoreRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].FinalCreditScore > all[j].FinalCreditScore
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetAll retrieves all scores ordered by wallet_address ASC.
func (s *WalletScoreStore) GetAll(_ context.Context) ([]*domain.WalletScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WalletScoreRecord, 0, len(s.data))
	for _, r := range s.data {
		c := *r
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletAddress < result[j].WalletAddress
	})
	return result, nil
}

var _ storage.WalletScoreStore = (*WalletScoreStore)(nil)
