package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// WalletScoreStore implements storage.WalletScoreStore using PostgreSQL.
type WalletScoreStore struct {
	pool *Pool
}

// NewWalletScoreStore creates a new WalletScoreStore.
func NewWalletScoreStore(pool *Pool) *WalletScoreStore {
	return &WalletScoreStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletScoreStore = (*WalletScoreStore)(nil)

// InsertBulk adds score rows atomically. Returns ErrDuplicateKey if any wallet exists.
func (s *WalletScoreStore) InsertBulk(ctx context.Context, scores []*domain.WalletScoreRecord) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO wallet_scores (wallet_address, raw_score, final_credit_score, run_id, scored_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, r := range scores {
		if r == nil || r.WalletAddress == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query, r.WalletAddress, r.RawScore, r.FinalCreditScore, r.RunID, r.ScoredAt)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert wallet score in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByWallet retrieves the score for a wallet. Returns ErrNotFound if not exists.
func (s *WalletScoreStore) GetByWallet(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error) {
	query := `
		SELECT wallet_address, raw_score, final_credit_score, run_id, scored_at
		FROM wallet_scores
		WHERE wallet_address = $1
	`

	var r domain.WalletScoreRecord
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&r.WalletAddress, &r.RawScore, &r.FinalCreditScore, &r.RunID, &r.ScoredAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet score: %w", err)
	}
	return &r, nil
}

// GetTop retrieves up to limit scores ordered by final_credit_score DESC, wallet_address ASC.
func (s *WalletScoreStore) GetTop(ctx context.Context, limit int) ([]*domain.WalletScoreRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT wallet_address, raw_score, final_credit_score, run_id, scored_at
		FROM wallet_scores
		ORDER BY final_credit_score DESC, wallet_address ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get top wallet scores: %w", err)
	}
	defer rows.Close()

	return scanWalletScores(rows)
}

// GetAll retrieves all scores ordered by wallet_address ASC.
func (s *WalletScoreStore) GetAll(ctx context.Context) ([]*domain.WalletScoreRecord, error) {
	query := `
		SELECT wallet_address, raw_score, final_credit_score, run_id, scored_at
		FROM wallet_scores
		ORDER BY wallet_address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all wallet scores: %w", err)
	}
	defer rows.Close()

	return scanWalletScores(rows)
}

// scanWalletScores scans multiple rows into a slice of WalletScoreRecord.
func scanWalletScores(rows pgx.Rows) ([]*domain.WalletScoreRecord, error) {
	var scores []*domain.WalletScoreRecord

	for rows.Next() {
		var r domain.WalletScoreRecord
		if err := rows.Scan(&r.WalletAddress, &r.RawScore, &r.FinalCreditScore, &r.RunID, &r.ScoredAt); err != nil {
			return nil, fmt.Errorf("scan wallet score row: %w", err)
		}
		scores = append(scores, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet score rows: %w", err)
	}

	return scores, nil
}
