package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wallet-credit-score/internal/config"
	"wallet-credit-score/internal/normalization"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/storage/clickhouse"
	"wallet-credit-score/internal/storage/migrations"
	"wallet-credit-score/internal/storage/postgres"
)

// Env is what every command needs after flag parsing.
type Env struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// Setup resolves configuration for cmd, validates the given requirements
// and builds the logger.
func Setup(cmd *cobra.Command, reqs ...config.Requirement) (*Env, error) {
	cfg, err := config.FromFlags(cmd.Flags(), os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(reqs...); err != nil {
		return nil, err
	}
	logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("cmd", cmd.Name()).Logger()

	return &Env{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(observability.DefaultNamespace, nil),
	}, nil
}

// Normalizer builds the normalization engine from the configured decimals table.
func (e *Env) Normalizer() (normalization.NormalizationEngine, error) {
	table, err := e.Config.DecimalsTable()
	if err != nil {
		return nil, err
	}
	return normalization.NewRunner(table, e.Logger), nil
}

// OpenPostgres connects and applies migrations.
func (e *Env) OpenPostgres(ctx context.Context) (*postgres.Pool, error) {
	var opts []postgres.PoolOption
	if e.Config.Postgres.MaxConns > 0 {
		opts = append(opts, postgres.WithMaxConns(e.Config.Postgres.MaxConns))
	}
	opts = append(opts, postgres.WithApplicationName("wallet-credit-score"))

	pool, err := postgres.NewPool(ctx, e.Config.Postgres.DSN, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool, e.Logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}
	return pool, nil
}

// OpenClickHouse applies migrations and returns the connection.
func (e *Env) OpenClickHouse(ctx context.Context) (*clickhouse.Conn, error) {
	conn, err := migrations.RunClickhouseMigrations(ctx, e.Config.ClickHouse.DSN, e.Logger)
	if err != nil {
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	return conn, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
