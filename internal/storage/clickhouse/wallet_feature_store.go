package clickhouse

import (
	"context"
	"fmt"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// WalletFeatureStore implements storage.WalletFeatureStore using ClickHouse.
type WalletFeatureStore struct {
	conn *Conn
}

// NewWalletFeatureStore creates a new WalletFeatureStore.
func NewWalletFeatureStore(conn *Conn) *WalletFeatureStore {
	return &WalletFeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.WalletFeatureStore = (*WalletFeatureStore)(nil)

const walletFeatureColumns = `
	wallet_address, total_transactions, first_tx_timestamp, last_tx_timestamp, num_unique_assets,
	total_deposit_value, total_borrow_value, total_repay_value,
	total_liquidation_amount, total_collateral_liquidated,
	deposit_count, borrow_count, repay_count, liquidation_call_count,
	activity_duration_days, net_borrow_value, repay_ratio, borrow_to_deposit_ratio,
	was_liquidated, avg_tx_amount
`

// InsertBulk adds feature rows. Fails entire batch on duplicate.
// MergeTree does not enforce keys, so duplicates are checked before the batch is sent.
func (s *WalletFeatureStore) InsertBulk(ctx context.Context, features []*domain.WalletFeatures) error {
	if len(features) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(features))
	wallets := make([]string, 0, len(features))
	for _, f := range features {
		if f == nil || f.WalletAddress == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[f.WalletAddress]; exists {
			return storage.ErrDuplicateKey
		}
		seen[f.WalletAddress] = struct{}{}
		wallets = append(wallets, f.WalletAddress)
	}

	existing, err := s.countExisting(ctx, wallets)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if existing > 0 {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO wallet_features (`+walletFeatureColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, f := range features {
		err = batch.Append(
			f.WalletAddress,
			uint32(f.TotalTransactions),
			f.FirstTxTimestamp,
			f.LastTxTimestamp,
			uint32(f.NumUniqueAssets),
			f.TotalDepositValue,
			f.TotalBorrowValue,
			f.TotalRepayValue,
			f.TotalLiquidationAmount,
			f.TotalCollateralLiquidated,
			uint32(f.DepositCount),
			uint32(f.BorrowCount),
			uint32(f.RepayCount),
			uint32(f.LiquidationCallCount),
			f.ActivityDurationDays,
			f.NetBorrowValue,
			f.RepayRatio,
			f.BorrowToDepositRatio,
			uint8(f.WasLiquidated),
			f.AvgTxAmount,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByWallet retrieves features for a wallet. Returns ErrNotFound if not exists.
func (s *WalletFeatureStore) GetByWallet(ctx context.Context, wallet string) (*domain.WalletFeatures, error) {
	rows, err := s.conn.Query(ctx, `SELECT `+walletFeatureColumns+` FROM wallet_features WHERE wallet_address = ? LIMIT 1`, wallet)
	if err != nil {
		return nil, fmt.Errorf("query by wallet: %w", err)
	}
	defer rows.Close()

	features, err := scanWalletFeatures(rows)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, storage.ErrNotFound
	}
	return features[0], nil
}

// GetAll retrieves all feature rows ordered by wallet_address ASC.
func (s *WalletFeatureStore) GetAll(ctx context.Context) ([]*domain.WalletFeatures, error) {
	rows, err := s.conn.Query(ctx, `SELECT `+walletFeatureColumns+` FROM wallet_features ORDER BY wallet_address ASC`)
	if err != nil {
		return nil, fmt.Errorf("query all: %w", err)
	}
	defer rows.Close()

	return scanWalletFeatures(rows)
}

// countExisting returns how many of the given wallets already have rows.
func (s *WalletFeatureStore) countExisting(ctx context.Context, wallets []string) (uint64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM wallet_features WHERE wallet_address IN (?)`, wallets).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// scanWalletFeatures scans multiple rows.
func scanWalletFeatures(rows chRows) ([]*domain.WalletFeatures, error) {
	var features []*domain.WalletFeatures

	for rows.Next() {
		var (
			f                                               domain.WalletFeatures
			totalTx, uniqueAssets                           uint32
			depositCount, borrowCount, repayCount, liqCount uint32
			wasLiquidated                                   uint8
		)

		err := rows.Scan(
			&f.WalletAddress,
			&totalTx,
			&f.FirstTxTimestamp,
			&f.LastTxTimestamp,
			&uniqueAssets,
			&f.TotalDepositValue,
			&f.TotalBorrowValue,
			&f.TotalRepayValue,
			&f.TotalLiquidationAmount,
			&f.TotalCollateralLiquidated,
			&depositCount,
			&borrowCount,
			&repayCount,
			&liqCount,
			&f.ActivityDurationDays,
			&f.NetBorrowValue,
			&f.RepayRatio,
			&f.BorrowToDepositRatio,
			&wasLiquidated,
			&f.AvgTxAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet features row: %w", err)
		}

		f.TotalTransactions = int(totalTx)
		f.NumUniqueAssets = int(uniqueAssets)
		f.DepositCount = int(depositCount)
		f.BorrowCount = int(borrowCount)
		f.RepayCount = int(repayCount)
		f.LiquidationCallCount = int(liqCount)
		f.WasLiquidated = int(wasLiquidated)

		features = append(features, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet features rows: %w", err)
	}

	return features, nil
}
