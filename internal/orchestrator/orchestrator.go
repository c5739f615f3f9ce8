// Package orchestrator provides E2E scoring orchestration.
// It coordinates: source → normalization → aggregation → features → scoring
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/ingestion"
	"wallet-credit-score/internal/metrics"
	"wallet-credit-score/internal/normalization"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/scoring"
)

// ErrNoSource is returned when the orchestrator has no event source.
var ErrNoSource = errors.New("no event source configured")

// Orchestrator coordinates the E2E scoring run.
type Orchestrator struct {
	source     ingestion.EventSource
	normalizer normalization.NormalizationEngine
	metrics    *observability.Metrics
	logger     zerolog.Logger
	clock      func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	Source     ingestion.EventSource             // required
	Normalizer normalization.NormalizationEngine // default: builtin decimals table
	Metrics    *observability.Metrics            // optional
	Logger     zerolog.Logger
	Clock      func() time.Time // used for phase timing only
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = normalization.NewRunner(normalization.DefaultDecimalsTable(), opts.Logger)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		source:     opts.Source,
		normalizer: normalizer,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		clock:      clock,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	EventsRead int
	Quality    *normalization.QualityStats
	Scored     []*domain.ScoredWallet // wallet first-appearance order
}

// Run executes the full scoring run.
// Phases:
//  1. Load raw events from the source
//  2. Normalize (decimal correction, flattening)
//  3. Aggregate per wallet
//  4. Derive features
//  5. Score and rescale
//
// An empty wallet population is not an error here; the result has no Scored rows.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	if o.source == nil {
		return nil, ErrNoSource
	}
	result := &RunResult{}
	start := o.clock()

	// Phase 1: Load
	o.logger.Info().Str("source", o.source.Name()).Msg("phase 1: loading events")
	raws, err := o.source.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load events) failed: %w", err)
	}
	result.EventsRead = len(raws)
	o.logger.Info().Int("events", len(raws)).Msg("loaded events")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("phase 2 (normalization) failed: %w", err)
	}

	// Phase 2: Normalization
	o.logger.Info().Msg("phase 2: normalizing events")
	norm, err := o.normalizer.Normalize(ctx, raws)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (normalization) failed: %w", err)
	}
	result.Quality = norm.Quality
	o.logger.Info().
		Int("kept", norm.Quality.EventsKept).
		Int("dropped", norm.Quality.EventsRead-norm.Quality.EventsKept).
		Int("amounts_missing", norm.Quality.AmountsMissing).
		Msg("normalized events")
	o.metrics.RecordNormalization(norm.Quality.EventsRead, norm.Quality.EventsKept, issueCounts(norm.Quality))

	// Phase 3: Aggregation
	o.logger.Info().Msg("phase 3: aggregating wallets")
	aggs, err := metrics.AggregateWallets(ctx, norm.Events)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (aggregation) failed: %w", err)
	}
	o.logger.Info().Int("wallets", len(aggs)).Msg("aggregated wallets")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("phase 4 (features) failed: %w", err)
	}

	// Phase 4: Features
	features := metrics.ComputeAllFeatures(aggs)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("phase 5 (scoring) failed: %w", err)
	}

	// Phase 5: Scoring
	o.logger.Info().Msg("phase 5: scoring wallets")
	result.Scored = scoring.Score(features)

	finals := make([]int, len(result.Scored))
	for i, s := range result.Scored {
		finals[i] = s.FinalCreditScore
	}
	o.metrics.RecordScores(finals)

	o.logger.Info().
		Int("wallets", len(result.Scored)).
		Dur("elapsed", o.clock().Sub(start)).
		Msg("scoring completed")

	return result, nil
}

func issueCounts(q *normalization.QualityStats) map[string]int {
	out := make(map[string]int, len(q.Issues))
	for issue, n := range q.Issues {
		out[string(issue)] = n
	}
	return out
}
