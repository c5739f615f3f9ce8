package postgres

import (
	"context"
	"fmt"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// SourceLoadStore is a PostgreSQL implementation of storage.SourceLoadStore.
type SourceLoadStore struct {
	pool *Pool
}

// NewSourceLoadStore creates a new PostgreSQL source load store.
func NewSourceLoadStore(pool *Pool) *SourceLoadStore {
	return &SourceLoadStore{pool: pool}
}

var _ storage.SourceLoadStore = (*SourceLoadStore)(nil)

// Insert records a completed load.
func (s *SourceLoadStore) Insert(ctx context.Context, l *domain.SourceLoad) error {
	if l == nil || l.SourceID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO source_loads (source_id, source_name, event_count, loaded_at)
		VALUES ($1, $2, $3, $4)
	`, l.SourceID, l.SourceName, l.EventCount, l.LoadedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert source load: %w", err)
	}
	return nil
}

// Get returns the load record for a source.
func (s *SourceLoadStore) Get(ctx context.Context, sourceID string) (*domain.SourceLoad, error) {
	if sourceID == "" {
		return nil, storage.ErrInvalidInput
	}

	var l domain.SourceLoad
	err := s.pool.QueryRow(ctx, `
		SELECT source_id, source_name, event_count, loaded_at
		FROM source_loads
		WHERE source_id = $1
	`, sourceID).Scan(&l.SourceID, &l.SourceName, &l.EventCount, &l.LoadedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get source load: %w", err)
	}
	return &l, nil
}

// GetAll returns all loads ordered by loaded_at ASC, source_id ASC.
func (s *SourceLoadStore) GetAll(ctx context.Context) ([]*domain.SourceLoad, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source_id, source_name, event_count, loaded_at
		FROM source_loads
		ORDER BY loaded_at ASC, source_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("get source loads: %w", err)
	}
	defer rows.Close()

	var loads []*domain.SourceLoad
	for rows.Next() {
		var l domain.SourceLoad
		if err := rows.Scan(&l.SourceID, &l.SourceName, &l.EventCount, &l.LoadedAt); err != nil {
			return nil, fmt.Errorf("scan source load row: %w", err)
		}
		loads = append(loads, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source load rows: %w", err)
	}
	return loads, nil
}
