package domain

// WalletAggregate holds per-wallet counters and sums built from normalized events.
type WalletAggregate struct {
	WalletAddress     string
	TotalTransactions int   // distinct non-empty tx hashes
	FirstTxTimestamp  int64 // Unix seconds, 0 if no event had a timestamp
	LastTxTimestamp   int64
	NumUniqueAssets   int

	TotalDepositValue         float64
	TotalBorrowValue          float64
	TotalRepayValue           float64
	TotalLiquidationAmount    float64 // sum of liquidation principal
	TotalCollateralLiquidated float64

	DepositCount         int
	BorrowCount          int
	RepayCount           int
	LiquidationCallCount int
}

// WalletFeatures extends WalletAggregate with derived ratios.
// Corresponds to wallet_features table in ClickHouse.
type WalletFeatures struct {
	WalletAggregate

	ActivityDurationDays int64
	NetBorrowValue       float64 // may be negative
	RepayRatio           float64 // [0, 1]
	BorrowToDepositRatio float64 // [0, 10]
	WasLiquidated        int     // 0 or 1
	AvgTxAmount          float64
}

// ScoredWallet is the final per-wallet artifact.
// Corresponds to wallet_scores table in PostgreSQL.
type ScoredWallet struct {
	WalletFeatures

	RawScore         float64 // unbounded heuristic sum
	FinalCreditScore int     // population-normalized, [0, 1000]
}

// WalletScoreRecord is the persisted form of a score.
// Corresponds to wallet_scores table in PostgreSQL and the score cache.
type WalletScoreRecord struct {
	WalletAddress    string  `json:"wallet_address"`
	RawScore         float64 `json:"raw_score"`
	FinalCreditScore int     `json:"final_credit_score"`
	RunID            string  `json:"run_id"`
	ScoredAt         int64   `json:"scored_at"` // Unix seconds
}

// Record converts a scored wallet into its persisted form.
func (s *ScoredWallet) Record(runID string, scoredAt int64) *WalletScoreRecord {
	return &WalletScoreRecord{
		WalletAddress:    s.WalletAddress,
		RawScore:         s.RawScore,
		FinalCreditScore: s.FinalCreditScore,
		RunID:            runID,
		ScoredAt:         scoredAt,
	}
}

// ScoreBatch is one run's scored population handed to output sinks.
type ScoreBatch struct {
	RunID    string
	ScoredAt int64 // Unix seconds
	Wallets  []*ScoredWallet
}

// Records converts every wallet in the batch into its persisted form.
func (b *ScoreBatch) Records() []*WalletScoreRecord {
	out := make([]*WalletScoreRecord, 0, len(b.Wallets))
	for _, w := range b.Wallets {
		out = append(out, w.Record(b.RunID, b.ScoredAt))
	}
	return out
}

// Features returns the feature rows of every wallet in the batch.
func (b *ScoreBatch) Features() []*WalletFeatures {
	out := make([]*WalletFeatures, 0, len(b.Wallets))
	for _, w := range b.Wallets {
		f := w.WalletFeatures
		out = append(out, &f)
	}
	return out
}
