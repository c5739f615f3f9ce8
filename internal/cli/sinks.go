package cli

import (
	"context"
	"fmt"

	"wallet-credit-score/internal/cache"
	"wallet-credit-score/internal/pipeline"
	"wallet-credit-score/internal/publish"
	"wallet-credit-score/internal/storage/clickhouse"
	"wallet-credit-score/internal/storage/postgres"
)

// Sinks opens every configured score sink. The returned close func releases
// all opened connections and is safe to call when no sink was opened.
// pool may be nil; when set it is reused for the Postgres score sink.
func (e *Env) Sinks(ctx context.Context, pool *postgres.Pool) ([]pipeline.Sink, func(), error) {
	var (
		sinks   []pipeline.Sink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	cfg := e.Config
	if cfg.Postgres.DSN != "" {
		if pool == nil {
			p, err := e.OpenPostgres(ctx)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			pool = p
			closers = append(closers, p.Close)
		}
		sinks = append(sinks, pipeline.NewScoreStoreSink(postgres.NewWalletScoreStore(pool)))
	}

	if cfg.ClickHouse.DSN != "" {
		conn, err := e.OpenClickHouse(ctx)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { conn.Close() })
		sinks = append(sinks, pipeline.NewFeatureStoreSink(clickhouse.NewWalletFeatureStore(conn)))
	}

	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		closers = append(closers, func() { client.Close() })
		sc := cache.NewScoreCache(client, cfg.Redis.Key).WithMetrics(e.Metrics)
		if err := sc.Ping(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		sinks = append(sinks, sc)
	}

	if cfg.AMQP.URL != "" {
		pub, err := publish.Dial(cfg.AMQP.URL, publish.Options{
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
			Metrics:    e.Metrics,
			Logger:     e.Logger,
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { pub.Close() })
		sinks = append(sinks, pub)
	}

	for _, s := range sinks {
		e.Logger.Info().Str("sink", s.Name()).Msg("sink enabled")
	}
	return sinks, closeAll, nil
}
