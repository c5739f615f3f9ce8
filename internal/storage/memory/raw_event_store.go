package memory

import (
	"context"
	"sync"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// RawEventStore is an in-memory implementation of storage.RawEventStore.
type RawEventStore struct {
	mu    sync.RWMutex
	ids   map[string]struct{}
	order []*domain.RawEvent // insertion order
}

// NewRawEventStore creates a new in-memory raw event store.
func NewRawEventStore() *RawEventStore {
	return &RawEventStore{
		ids: make(map[string]struct{}),
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if exists.
func (s *RawEventStore) Insert(_ context.Context, e *domain.RawEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	s.ids[e.EventID] = struct{}{}
	s.order = append(s.order, copyRawEvent(e))
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *RawEventStore) InsertBulk(_ context.Context, events []*domain.RawEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(events))

	// First pass: check for duplicates (existing + intra-batch)
	for _, e := range events {
		if e == nil || e.EventID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.ids[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[e.EventID] = struct{}{}
	}

	// Second pass: insert all
	for _, e := range events {
		s.ids[e.EventID] = struct{}{}
		s.order = append(s.order, copyRawEvent(e))
	}

	return nil
}

// GetAll retrieves all events in insertion order.
func (s *RawEventStore) GetAll(_ context.Context) ([]*domain.RawEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RawEvent, 0, len(s.order))
	for _, e := range s.order {
		result = append(result, copyRawEvent(e))
	}
	return result, nil
}

// GetByWallet retrieves all events for a wallet in insertion order.
func (s *RawEventStore) GetByWallet(_ context.Context, wallet string) ([]*domain.RawEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RawEvent
	for _, e := range s.order {
		if e.WalletAddress == wallet {
			result = append(result, copyRawEvent(e))
		}
	}
	return result, nil
}

// Count returns the number of stored events.
func (s *RawEventStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// copyRawEvent returns a deep copy so callers cannot mutate stored state.
func copyRawEvent(e *domain.RawEvent) *domain.RawEvent {
	c := *e
	c.Timestamp = copyInt64(e.Timestamp)
	c.BlockNumber = copyInt64(e.BlockNumber)
	if e.CreatedAt != nil {
		t := *e.CreatedAt
		c.CreatedAt = &t
	}
	if e.Payload != nil {
		p := *e.Payload
		p.AssetSymbol = copyString(p.AssetSymbol)
		p.Amount = copyString(p.Amount)
		p.AssetPriceUSD = copyString(p.AssetPriceUSD)
		p.BorrowRate = copyString(p.BorrowRate)
		p.BorrowRateMode = copyString(p.BorrowRateMode)
		p.VariableTokenDebt = copyString(p.VariableTokenDebt)
		p.StableTokenDebt = copyString(p.StableTokenDebt)
		p.CollateralAmount = copyString(p.CollateralAmount)
		p.CollateralAssetPriceUSD = copyString(p.CollateralAssetPriceUSD)
		p.PrincipalAmount = copyString(p.PrincipalAmount)
		p.BorrowAssetPriceUSD = copyString(p.BorrowAssetPriceUSD)
		c.Payload = &p
	}
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

var _ storage.RawEventStore = (*RawEventStore)(nil)
