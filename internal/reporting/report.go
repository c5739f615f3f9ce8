package reporting

import "time"

// Report represents the scoring run report structure.
type Report struct {
	// Metadata
	RunID       string
	GeneratedAt time.Time
	DataVersion string // hash over (wallet, final score) rows
	Source      string // event source name

	// Data Summary
	DataSummary DataSummary

	// Data Quality (per-record issues absorbed during normalization)
	DataQuality DataQualitySection

	// Score distribution
	ScoreSummary ScoreSummary
	ScoreBands   []ScoreBandRow
}

// DataSummary contains data description.
type DataSummary struct {
	EventsRead     int
	EventsKept     int
	TotalWallets   int
	DateRangeStart int64 // Unix seconds, 0 if no event had a timestamp
	DateRangeEnd   int64 // Unix seconds
}

// DataQualitySection lists issue counts, unmapped asset symbols and
// data sufficiency checks. Failed checks are warnings; they never abort a run.
type DataQualitySection struct {
	Checks          []CheckRow
	AllChecksPassed bool
	Issues          []IssueRow
	AmountsMissing int
	UnknownSymbols []string
	AssetSymbols   []string
}

// CheckRow represents one data sufficiency criterion.
type CheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// IssueRow is one data-quality issue kind with its count.
type IssueRow struct {
	Issue string
	Count int
}

// ScoreSummary describes the final score population.
type ScoreSummary struct {
	Min  int
	Max  int
	Mean float64
}

// ScoreBandRow aggregates wallets whose final score falls in [Lower, Upper).
// The last band includes its upper bound.
type ScoreBandRow struct {
	Label   string
	Lower   int
	Upper   int
	Count   int
	Percent float64

	// Mean feature values over the band, 0 when the band is empty.
	MeanTransactions     float64
	MeanDepositValue     float64
	MeanBorrowValue      float64
	MeanRepayRatio       float64
	MeanBorrowToDeposit  float64
	MeanLiquidations     float64
	MeanActivityDuration float64
}
