package verification

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/ingestion"
	"wallet-credit-score/internal/ingestion/stub"
	"wallet-credit-score/internal/normalization"
	"wallet-credit-score/internal/orchestrator"
	"wallet-credit-score/internal/storage"
)

// DeterminismVerifier scores a source twice, once in source order and once
// after a seeded shuffle, and compares the two populations.
type DeterminismVerifier struct {
	source     ingestion.EventSource
	normalizer normalization.NormalizationEngine
	seed       int64
	logger     zerolog.Logger
}

// DeterminismVerifierOptions contains configuration for creating a DeterminismVerifier.
type DeterminismVerifierOptions struct {
	Source     ingestion.EventSource
	Normalizer normalization.NormalizationEngine // optional
	Seed       int64
	Logger     zerolog.Logger
}

// NewDeterminismVerifier creates a new DeterminismVerifier.
func NewDeterminismVerifier(opts DeterminismVerifierOptions) *DeterminismVerifier {
	return &DeterminismVerifier{
		source:     opts.Source,
		normalizer: opts.Normalizer,
		seed:       opts.Seed,
		logger:     opts.Logger,
	}
}

// Verify runs both passes and compares them.
func (v *DeterminismVerifier) Verify(ctx context.Context) (*VerificationReport, error) {
	events, err := v.source.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events from %s: %w", v.source.Name(), err)
	}

	expected, err := v.score(ctx, "original", events)
	if err != nil {
		return nil, err
	}

	shuffled := make([]*domain.RawEvent, len(events))
	copy(shuffled, events)
	rng := rand.New(rand.NewSource(v.seed))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	actual, err := v.score(ctx, "shuffled", shuffled)
	if err != nil {
		return nil, err
	}

	report := ComparePopulations(expected, actual)
	v.logger.Info().
		Int("wallets", report.TotalWallets).
		Int("divergent", report.DivergentWallets).
		Bool("ok", report.OK()).
		Int64("seed", v.seed).
		Msg("determinism check completed")
	return report, nil
}

func (v *DeterminismVerifier) score(ctx context.Context, name string, events []*domain.RawEvent) ([]*domain.ScoredWallet, error) {
	orch := orchestrator.New(orchestrator.Options{
		Source:     stub.NewStubEventSource(name, events),
		Normalizer: v.normalizer,
		Logger:     v.logger,
	})
	result, err := orch.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s pass: %w", name, err)
	}
	return result.Scored, nil
}

// ReplayVerifier recomputes scores from a source and compares them with
// the score rows already stored for the same wallets.
type ReplayVerifier struct {
	source     ingestion.EventSource
	normalizer normalization.NormalizationEngine
	scoreStore storage.WalletScoreStore
	logger     zerolog.Logger
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	Source     ingestion.EventSource
	Normalizer normalization.NormalizationEngine // optional
	ScoreStore storage.WalletScoreStore
	Logger     zerolog.Logger
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		source:     opts.Source,
		normalizer: opts.Normalizer,
		scoreStore: opts.ScoreStore,
		logger:     opts.Logger,
	}
}

// Verify compares stored final and raw scores with a fresh computation.
// Only score fields are compared; stored rows carry no features.
func (v *ReplayVerifier) Verify(ctx context.Context) (*VerificationReport, error) {
	stored, err := v.scoreStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored scores: %w", err)
	}

	orch := orchestrator.New(orchestrator.Options{
		Source:     v.source,
		Normalizer: v.normalizer,
		Logger:     v.logger,
	})
	result, err := orch.Run(ctx)
	if err != nil {
		return nil, err
	}

	report := ComparePopulations(storedAsScored(stored), scoresOnly(result.Scored))
	v.logger.Info().
		Int("wallets", report.TotalWallets).
		Int("divergent", report.DivergentWallets).
		Int("missing", len(report.MissingWallets)).
		Bool("ok", report.OK()).
		Msg("replay verification completed")
	return report, nil
}

func storedAsScored(records []*domain.WalletScoreRecord) []*domain.ScoredWallet {
	out := make([]*domain.ScoredWallet, 0, len(records))
	for _, r := range records {
		sw := &domain.ScoredWallet{RawScore: r.RawScore, FinalCreditScore: r.FinalCreditScore}
		sw.WalletAddress = r.WalletAddress
		out = append(out, sw)
	}
	return out
}

func scoresOnly(scored []*domain.ScoredWallet) []*domain.ScoredWallet {
	out := make([]*domain.ScoredWallet, 0, len(scored))
	for _, s := range scored {
		sw := &domain.ScoredWallet{RawScore: s.RawScore, FinalCreditScore: s.FinalCreditScore}
		sw.WalletAddress = s.WalletAddress
		out = append(out, sw)
	}
	return out
}

var (
	_ Verifier = (*DeterminismVerifier)(nil)
	_ Verifier = (*ReplayVerifier)(nil)
)
