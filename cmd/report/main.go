// Package main scores the raw events already stored in Postgres.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wallet-credit-score/internal/cli"
	"wallet-credit-score/internal/config"
	"wallet-credit-score/internal/ingestion"
	"wallet-credit-score/internal/orchestrator"
	"wallet-credit-score/internal/pipeline"
	"wallet-credit-score/internal/storage"
	"wallet-credit-score/internal/storage/memory"
	"wallet-credit-score/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Score wallets from the Postgres raw event store",
		Long: `Loads every raw event from Postgres (populated by ingest), scores the
population and writes wallet_features.csv, wallet_scores.csv and REPORT.md.
With --use-fixtures the fixture events are loaded into an in-memory store instead.`,
		SilenceUsage: true,
		RunE:         run,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	env, err := cli.Setup(cmd)
	if err != nil {
		return err
	}
	cfg := env.Config
	if !cfg.UseFixtures && cfg.Postgres.DSN == "" {
		return fmt.Errorf("%w: --postgres-dsn is required when not using fixtures", config.ErrInvalidConfig)
	}

	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	var (
		rawStore storage.RawEventStore
		pool     *postgres.Pool
	)
	if cfg.UseFixtures {
		mem := memory.NewRawEventStore()
		if err := pipeline.LoadFixtures(ctx, mem); err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		rawStore = mem
	} else {
		pool, err = env.OpenPostgres(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		rawStore = postgres.NewRawEventStore(pool)
	}

	normalizer, err := env.Normalizer()
	if err != nil {
		return err
	}

	sinks, closeSinks, err := env.Sinks(ctx, pool)
	if err != nil {
		return err
	}
	defer closeSinks()

	source := ingestion.NewStoreSource(rawStore, "raw_events")
	orch := orchestrator.New(orchestrator.Options{
		Source:     source,
		Normalizer: normalizer,
		Metrics:    env.Metrics,
		Logger:     env.Logger,
	})
	out, err := pipeline.New(orch, cfg.OutputDir).
		WithSource(source.Name()).
		WithSinks(sinks...).
		WithMetrics(env.Metrics).
		WithLogger(env.Logger).
		Run(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Report generated (run %s, data version %s):\n", out.RunID, out.Report.DataVersion)
	for _, f := range out.Files {
		fmt.Fprintf(w, "  - %s\n", f)
	}
	return nil
}
