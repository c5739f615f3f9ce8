package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// SourceLoadStore is an in-memory implementation of storage.SourceLoadStore.
type SourceLoadStore struct {
	mu    sync.RWMutex
	loads map[string]*domain.SourceLoad // keyed by source_id
}

// NewSourceLoadStore creates a new in-memory source load store.
func NewSourceLoadStore() *SourceLoadStore {
	return &SourceLoadStore{
		loads: make(map[string]*domain.SourceLoad),
	}
}

// Insert records a completed load.
func (s *SourceLoadStore) Insert(_ context.Context, l *domain.SourceLoad) error {
	if l == nil || l.SourceID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.loads[l.SourceID]; exists {
		return storage.ErrDuplicateKey
	}
	c := *l
	s.loads[l.SourceID] = &c
	return nil
}

// Get returns the load record for a source.
func (s *SourceLoadStore) Get(_ context.Context, sourceID string) (*domain.SourceLoad, error) {
	if sourceID == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loads[sourceID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *l
	return &c, nil
}

// GetAll returns all loads ordered by loaded_at ASC, source_id ASC.
func (s *SourceLoadStore) GetAll(_ context.Context) ([]*domain.SourceLoad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SourceLoad, 0, len(s.loads))
	for _, l := range s.loads {
		c := *l
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LoadedAt != result[j].LoadedAt {
			return result[i].LoadedAt < result[j].LoadedAt
		}
		return result[i].SourceID < result[j].SourceID
	})
	return result, nil
}

var _ storage.SourceLoadStore = (*SourceLoadStore)(nil)
