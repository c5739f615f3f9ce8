// Package pipeline runs a scoring run end to end and writes its outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/orchestrator"
	"wallet-credit-score/internal/reporting"
)

// ErrNoWallets is returned when no wallet survived normalization.
// No output is written in that case.
var ErrNoWallets = errors.New("no wallets to score")

// Output file names.
const (
	FeaturesFile = "wallet_features.csv"
	ScoresFile   = "wallet_scores.csv"
	ReportFile   = "REPORT.md"
)

// Pipeline orchestrates scoring, rendering and output writing.
type Pipeline struct {
	orch      *orchestrator.Orchestrator
	reportGen *reporting.Generator
	outputDir string
	source    string
	clock     func() time.Time
	newRunID  func() string
	sinks     []Sink
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// New creates a new pipeline writing into outputDir.
func New(orch *orchestrator.Orchestrator, outputDir string) *Pipeline {
	return &Pipeline{
		orch:      orch,
		reportGen: reporting.NewGenerator(),
		outputDir: outputDir,
		clock:     func() time.Time { return time.Now().UTC() },
		newRunID:  func() string { return uuid.NewString() },
		logger:    zerolog.Nop(),
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithRunID sets the run identifier generator.
func (p *Pipeline) WithRunID(newRunID func() string) *Pipeline {
	p.newRunID = newRunID
	return p
}

// WithSource sets the source name recorded in the report.
func (p *Pipeline) WithSource(source string) *Pipeline {
	p.source = source
	return p
}

// WithSinks appends output sinks. Sinks run in order after the files are written.
func (p *Pipeline) WithSinks(sinks ...Sink) *Pipeline {
	p.sinks = append(p.sinks, sinks...)
	return p
}

// WithMetrics sets the metrics recorder.
func (p *Pipeline) WithMetrics(m *observability.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// WithLogger sets the logger.
func (p *Pipeline) WithLogger(logger zerolog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Output summarizes one pipeline run.
type Output struct {
	RunID  string
	Report *reporting.Report
	Batch  *domain.ScoreBatch
	Files  []string // absolute or outputDir-relative paths written
}

// Run executes the full pipeline and writes output files:
// - wallet_features.csv
// - wallet_scores.csv
// - REPORT.md
//
// Every output is rendered in memory first; a failure before the write phase
// leaves the output directory untouched.
func (p *Pipeline) Run(ctx context.Context) (*Output, error) {
	start := p.clock()
	out, err := p.run(ctx)
	status := "success"
	if err != nil {
		status = "failure"
	}
	p.metrics.RecordPipelineRun("all", status, p.clock().Sub(start).Seconds(), p.clock().Unix())
	return out, err
}

func (p *Pipeline) run(ctx context.Context) (*Output, error) {
	runID := p.newRunID()
	logger := p.logger.With().Str("run_id", runID).Logger()

	// 1. Score
	result, err := p.orch.Run(ctx)
	if err != nil {
		return nil, err
	}
	if len(result.Scored) == 0 {
		return nil, ErrNoWallets
	}

	// 2. Sufficiency checks (warnings only)
	suff := CheckSufficiency(result.Quality, result.Scored)
	if !suff.AllPass {
		for _, c := range suff.Checks {
			if !c.Pass {
				logger.Warn().Str("check", c.Name).Str("threshold", c.Threshold).Str("actual", c.Actual).Msg("sufficiency check failed")
			}
		}
	}

	// 3. Render everything in memory
	report := p.reportGen.Generate(reporting.Input{
		RunID:   runID,
		Source:  p.source,
		Scored:  result.Scored,
		Quality: result.Quality,
		Checks:  convertToCheckRows(suff),
	})

	featuresCSV, err := reporting.RenderFeaturesCSV(result.Scored)
	if err != nil {
		return nil, fmt.Errorf("phase 6 (render) failed: %w", err)
	}
	scoresCSV, err := reporting.RenderScoresCSV(result.Scored)
	if err != nil {
		return nil, fmt.Errorf("phase 6 (render) failed: %w", err)
	}
	reportMD := reporting.RenderMarkdown(report)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("phase 7 (write outputs) failed: %w", err)
	}

	// 4. Write files
	files, err := p.writeFiles(map[string]string{
		FeaturesFile: featuresCSV,
		ScoresFile:   scoresCSV,
		ReportFile:   reportMD,
	})
	if err != nil {
		return nil, fmt.Errorf("phase 7 (write outputs) failed: %w", err)
	}
	p.metrics.RecordReport()

	batch := &domain.ScoreBatch{
		RunID:    runID,
		ScoredAt: report.GeneratedAt.Unix(),
		Wallets:  result.Scored,
	}

	// 5. Sinks
	for _, sink := range p.sinks {
		if err := sink.Write(ctx, batch); err != nil {
			return nil, fmt.Errorf("phase 8 (sink %s) failed: %w", sink.Name(), err)
		}
		logger.Info().Str("sink", sink.Name()).Int("wallets", len(batch.Wallets)).Msg("sink written")
	}

	logger.Info().
		Int("wallets", len(result.Scored)).
		Str("data_version", report.DataVersion).
		Str("output_dir", p.outputDir).
		Msg("pipeline completed")

	return &Output{
		RunID:  runID,
		Report: report,
		Batch:  batch,
		Files:  files,
	}, nil
}

// writeFiles writes contents keyed by file name, in a fixed order.
func (p *Pipeline) writeFiles(contents map[string]string) ([]string, error) {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, err
	}
	var written []string
	for _, name := range []string{FeaturesFile, ScoresFile, ReportFile} {
		path := filepath.Join(p.outputDir, name)
		if err := os.WriteFile(path, []byte(contents[name]), 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
