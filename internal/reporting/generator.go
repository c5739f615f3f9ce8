package reporting

import (
	"time"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/idhash"
	"wallet-credit-score/internal/normalization"
)

// Band bounds for the score distribution. The last band is closed.
var bandBounds = []struct {
	label        string
	lower, upper int
}{
	{"0-200 (Very Low)", 0, 200},
	{"200-400 (Low)", 200, 400},
	{"400-600 (Medium)", 400, 600},
	{"600-800 (High)", 600, 800},
	{"800-1000 (Very High)", 800, 1000},
}

// Input is the in-memory result of one scoring run.
type Input struct {
	RunID   string
	Source  string
	Scored  []*domain.ScoredWallet
	Quality *normalization.QualityStats // may be nil
	Checks  []CheckRow                  // optional sufficiency checks
}

// Generator produces reports from scoring results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report.
func (g *Generator) Generate(in Input) *Report {
	generatedAt := g.now()
	records := make([]*domain.WalletScoreRecord, 0, len(in.Scored))
	for _, s := range in.Scored {
		records = append(records, s.Record(in.RunID, generatedAt.Unix()))
	}

	return &Report{
		RunID:        in.RunID,
		GeneratedAt:  generatedAt,
		DataVersion:  idhash.ComputeDataVersion(records),
		Source:       in.Source,
		DataSummary:  generateDataSummary(in),
		DataQuality:  generateDataQuality(in.Quality, in.Checks),
		ScoreSummary: generateScoreSummary(in.Scored),
		ScoreBands:   generateScoreBands(in.Scored),
	}
}

// generateDataSummary computes event totals and the observed time range.
func generateDataSummary(in Input) DataSummary {
	summary := DataSummary{TotalWallets: len(in.Scored)}
	if in.Quality != nil {
		summary.EventsRead = in.Quality.EventsRead
		summary.EventsKept = in.Quality.EventsKept
	}

	for _, s := range in.Scored {
		if s.FirstTxTimestamp == 0 && s.LastTxTimestamp == 0 {
			continue
		}
		if summary.DateRangeStart == 0 || s.FirstTxTimestamp < summary.DateRangeStart {
			summary.DateRangeStart = s.FirstTxTimestamp
		}
		if s.LastTxTimestamp > summary.DateRangeEnd {
			summary.DateRangeEnd = s.LastTxTimestamp
		}
	}
	return summary
}

func generateDataQuality(q *normalization.QualityStats, checks []CheckRow) DataQualitySection {
	section := DataQualitySection{Checks: checks, AllChecksPassed: true}
	for _, c := range checks {
		if !c.Pass {
			section.AllChecksPassed = false
		}
	}
	if q == nil {
		return section
	}
	section.AmountsMissing = q.AmountsMissing
	section.UnknownSymbols = q.SortedUnknownSymbols()
	section.AssetSymbols = q.SortedAssetSymbols()
	for _, issue := range normalization.AllIssues {
		section.Issues = append(section.Issues, IssueRow{Issue: string(issue), Count: q.Count(issue)})
	}
	return section
}

func generateScoreSummary(scored []*domain.ScoredWallet) ScoreSummary {
	if len(scored) == 0 {
		return ScoreSummary{}
	}
	summary := ScoreSummary{Min: scored[0].FinalCreditScore, Max: scored[0].FinalCreditScore}
	total := 0
	for _, s := range scored {
		if s.FinalCreditScore < summary.Min {
			summary.Min = s.FinalCreditScore
		}
		if s.FinalCreditScore > summary.Max {
			summary.Max = s.FinalCreditScore
		}
		total += s.FinalCreditScore
	}
	summary.Mean = float64(total) / float64(len(scored))
	return summary
}

// bandIndex returns the band a final score falls in.
func bandIndex(score int) int {
	for i, b := range bandBounds {
		if score < b.upper {
			return i
		}
	}
	return len(bandBounds) - 1
}

// generateScoreBands buckets wallets into the five score bands and averages
// their features per band.
func generateScoreBands(scored []*domain.ScoredWallet) []ScoreBandRow {
	rows := make([]ScoreBandRow, len(bandBounds))
	for i, b := range bandBounds {
		rows[i] = ScoreBandRow{Label: b.label, Lower: b.lower, Upper: b.upper}
	}

	for _, s := range scored {
		r := &rows[bandIndex(s.FinalCreditScore)]
		r.Count++
		r.MeanTransactions += float64(s.TotalTransactions)
		r.MeanDepositValue += s.TotalDepositValue
		r.MeanBorrowValue += s.TotalBorrowValue
		r.MeanRepayRatio += s.RepayRatio
		r.MeanBorrowToDeposit += s.BorrowToDepositRatio
		r.MeanLiquidations += float64(s.LiquidationCallCount)
		r.MeanActivityDuration += float64(s.ActivityDurationDays)
	}

	for i := range rows {
		r := &rows[i]
		if r.Count == 0 {
			continue
		}
		n := float64(r.Count)
		r.Percent = n / float64(len(scored)) * 100
		r.MeanTransactions /= n
		r.MeanDepositValue /= n
		r.MeanBorrowValue /= n
		r.MeanRepayRatio /= n
		r.MeanBorrowToDeposit /= n
		r.MeanLiquidations /= n
		r.MeanActivityDuration /= n
	}
	return rows
}
