// Package main serves stored wallet credit scores over HTTP.
//
// Endpoints:
//
//	GET /healthz                     dependency checks
//	GET /metrics                     Prometheus metrics
//	GET /api/v1/wallets?limit=N      top scores
//	GET /api/v1/wallets/{address}    one wallet's score
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wallet-credit-score/internal/cache"
	"wallet-credit-score/internal/cli"
	"wallet-credit-score/internal/config"
	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/ingestion/stub"
	"wallet-credit-score/internal/orchestrator"
	"wallet-credit-score/internal/pipeline"
	"wallet-credit-score/internal/server"
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
		Use:   "server",
		Short: "Serve wallet credit scores over HTTP",
		Long: `Read-only HTTP API over the Postgres wallet score table. When a Redis
address is configured, single-wallet lookups go through the score cache.
With --use-fixtures the fixture population is scored into memory and served.`,
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

	checks := make(map[string]server.HealthCheck)
	var scores storage.WalletScoreStore

	if cfg.UseFixtures {
		mem := memory.NewWalletScoreStore()
		if err := scoreFixtures(ctx, env, mem); err != nil {
			return err
		}
		scores = mem
	} else {
		pool, err := env.OpenPostgres(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		scores = postgres.NewWalletScoreStore(pool)
		checks["postgres"] = pool.Ping
	}

	var reader server.ScoreReader = scores
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		sc := cache.NewScoreCache(client, cfg.Redis.Key).WithMetrics(env.Metrics)
		reader = cache.NewReadThrough(sc, scores, env.Logger)
		checks["redis"] = sc.Ping
	}

	srv := server.New(server.Options{
		Scores:         reader,
		Checks:         checks,
		Metrics:        env.Metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         env.Logger,
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// scoreFixtures scores the fixture population into store.
func scoreFixtures(ctx context.Context, env *cli.Env, store storage.WalletScoreStore) error {
	normalizer, err := env.Normalizer()
	if err != nil {
		return err
	}
	orch := orchestrator.New(orchestrator.Options{
		Source:     stub.NewStubEventSource("fixtures", pipeline.FixtureEvents()),
		Normalizer: normalizer,
		Logger:     env.Logger,
	})
	result, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("score fixtures: %w", err)
	}

	batch := &domain.ScoreBatch{RunID: "fixtures", ScoredAt: time.Now().Unix(), Wallets: result.Scored}
	return pipeline.NewScoreStoreSink(store).Write(ctx, batch)
}
