package normalization

import "sort"

// Issue classifies a per-record data problem. Issues are absorbed into
// default values and counted; they never abort a run.
type Issue string

const (
	IssueNone            Issue = ""
	IssueMissingWallet   Issue = "missing_wallet"
	IssueNoPayload       Issue = "no_payload"
	IssueMissingAmount   Issue = "missing_amount"
	IssueNonDigitAmount  Issue = "non_digit_amount"
	IssueMissingSymbol   Issue = "missing_symbol"
	IssueUnknownSymbol   Issue = "unknown_symbol"
	IssueNonNumericField Issue = "non_numeric_field"
)

// AllIssues lists issue kinds in report order.
var AllIssues = []Issue{
	IssueMissingWallet,
	IssueNoPayload,
	IssueMissingAmount,
	IssueNonDigitAmount,
	IssueMissingSymbol,
	IssueUnknownSymbol,
	IssueNonNumericField,
}

// QualityStats tallies data-quality issues seen while normalizing a batch.
type QualityStats struct {
	EventsRead     int
	EventsKept     int
	AmountsMissing int // kept events whose Amount is NULL
	Issues         map[Issue]int
	UnknownSymbols map[string]int
	AssetSymbols   map[string]int // every symbol seen on kept events
}

// NewQualityStats creates empty stats.
func NewQualityStats() *QualityStats {
	return &QualityStats{
		Issues:         make(map[Issue]int),
		UnknownSymbols: make(map[string]int),
		AssetSymbols:   make(map[string]int),
	}
}

// Record adds one occurrence of issue. IssueNone is ignored.
func (q *QualityStats) Record(issue Issue) {
	if issue == IssueNone {
		return
	}
	q.Issues[issue]++
}

// Count returns occurrences of issue.
func (q *QualityStats) Count(issue Issue) int {
	return q.Issues[issue]
}

// SortedUnknownSymbols returns unmapped symbols in lexical order.
func (q *QualityStats) SortedUnknownSymbols() []string {
	return sortedKeys(q.UnknownSymbols)
}

// SortedAssetSymbols returns all observed symbols in lexical order.
func (q *QualityStats) SortedAssetSymbols() []string {
	return sortedKeys(q.AssetSymbols)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
