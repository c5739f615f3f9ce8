package normalization

import (
	"context"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
)

// NormalizationEngine defines the main normalization interface.
type NormalizationEngine interface {
	// Normalize flattens a batch of raw events and reports data-quality issues.
	Normalize(ctx context.Context, raws []*domain.RawEvent) (*Result, error)
}

// Result holds the normalized batch and its quality tally.
type Result struct {
	Events  []*domain.NormalizedEvent
	Quality *QualityStats
}

// Runner implements NormalizationEngine.
type Runner struct {
	table  DecimalsTable
	logger zerolog.Logger
}

// NewRunner creates a new normalization runner.
func NewRunner(table DecimalsTable, logger zerolog.Logger) *Runner {
	return &Runner{
		table:  table,
		logger: logger,
	}
}

// Table returns the decimals table used by the runner.
func (r *Runner) Table() DecimalsTable {
	return r.table
}

var _ NormalizationEngine = (*Runner)(nil)
