package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// RawEventStore implements storage.RawEventStore using PostgreSQL.
type RawEventStore struct {
	pool *Pool
}

// NewRawEventStore creates a new RawEventStore.
func NewRawEventStore(pool *Pool) *RawEventStore {
	return &RawEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RawEventStore = (*RawEventStore)(nil)

const insertRawEventQuery = `
	INSERT INTO raw_events (
		event_id, wallet_address, action, timestamp, tx_hash, log_id, network, protocol,
		block_number, source_created_at, has_payload, payload_type, asset_symbol, amount,
		asset_price_usd, borrow_rate, borrow_rate_mode, variable_token_debt, stable_token_debt,
		collateral_amount, collateral_asset_price_usd, principal_amount, borrow_asset_price_usd
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
`

const selectRawEventColumns = `
	SELECT event_id, wallet_address, action, timestamp, tx_hash, log_id, network, protocol,
		block_number, source_created_at, has_payload, payload_type, asset_symbol, amount,
		asset_price_usd, borrow_rate, borrow_rate_mode, variable_token_debt, stable_token_debt,
		collateral_amount, collateral_asset_price_usd, principal_amount, borrow_asset_price_usd
	FROM raw_events
`

// rawEventArgs flattens an event into insertRawEventQuery arguments.
func rawEventArgs(e *domain.RawEvent) []any {
	p := e.Payload
	hasPayload := p != nil
	if p == nil {
		p = &domain.ActionPayload{}
	}
	return []any{
		e.EventID,
		e.WalletAddress,
		string(e.Action),
		e.Timestamp,
		e.TxHash,
		e.LogID,
		e.Network,
		e.Protocol,
		e.BlockNumber,
		e.CreatedAt,
		hasPayload,
		p.Type,
		p.AssetSymbol,
		p.Amount,
		p.AssetPriceUSD,
		p.BorrowRate,
		p.BorrowRateMode,
		p.VariableTokenDebt,
		p.StableTokenDebt,
		p.CollateralAmount,
		p.CollateralAssetPriceUSD,
		p.PrincipalAmount,
		p.BorrowAssetPriceUSD,
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *RawEventStore) Insert(ctx context.Context, e *domain.RawEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertRawEventQuery, rawEventArgs(e)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert raw event: %w", err)
	}
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *RawEventStore) InsertBulk(ctx context.Context, events []*domain.RawEvent) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e == nil || e.EventID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(insertRawEventQuery, rawEventArgs(e)...)
	}

	results := tx.SendBatch(ctx, batch)
	for range events {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert raw event in bulk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all events in insertion order.
func (s *RawEventStore) GetAll(ctx context.Context) ([]*domain.RawEvent, error) {
	rows, err := s.pool.Query(ctx, selectRawEventColumns+` ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all raw events: %w", err)
	}
	defer rows.Close()

	return scanRawEvents(rows)
}

// GetByWallet retrieves all events for a wallet in insertion order.
func (s *RawEventStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.RawEvent, error) {
	rows, err := s.pool.Query(ctx, selectRawEventColumns+` WHERE wallet_address = $1 ORDER BY seq ASC`, wallet)
	if err != nil {
		return nil, fmt.Errorf("get raw events by wallet: %w", err)
	}
	defer rows.Close()

	return scanRawEvents(rows)
}

// Count returns the number of stored events.
func (s *RawEventStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM raw_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count raw events: %w", err)
	}
	return n, nil
}

// scanRawEvents scans multiple rows into a slice of RawEvent.
func scanRawEvents(rows pgx.Rows) ([]*domain.RawEvent, error) {
	var events []*domain.RawEvent

	for rows.Next() {
		var (
			e          domain.RawEvent
			p          domain.ActionPayload
			action     string
			hasPayload bool
		)

		err := rows.Scan(
			&e.EventID,
			&e.WalletAddress,
			&action,
			&e.Timestamp,
			&e.TxHash,
			&e.LogID,
			&e.Network,
			&e.Protocol,
			&e.BlockNumber,
			&e.CreatedAt,
			&hasPayload,
			&p.Type,
			&p.AssetSymbol,
			&p.Amount,
			&p.AssetPriceUSD,
			&p.BorrowRate,
			&p.BorrowRateMode,
			&p.VariableTokenDebt,
			&p.StableTokenDebt,
			&p.CollateralAmount,
			&p.CollateralAssetPriceUSD,
			&p.PrincipalAmount,
			&p.BorrowAssetPriceUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("scan raw event row: %w", err)
		}

		e.Action = domain.ActionKind(action)
		if hasPayload {
			e.Payload = &p
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw event rows: %w", err)
	}

	return events, nil
}
