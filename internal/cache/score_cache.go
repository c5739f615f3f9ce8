// Package cache keeps the latest wallet scores in Redis for fast lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/storage"
)

// DefaultKey is the Redis hash holding wallet → score record JSON.
const DefaultKey = "wcs:scores"

// ScoreCache stores score records in one Redis hash keyed by wallet address.
// Unlike the database sinks it overwrites: the hash always holds the latest run.
type ScoreCache struct {
	client  *redis.Client
	key     string
	metrics *observability.Metrics
}

// NewScoreCache creates a cache over client. An empty key uses DefaultKey.
func NewScoreCache(client *redis.Client, key string) *ScoreCache {
	if key == "" {
		key = DefaultKey
	}
	return &ScoreCache{client: client, key: key}
}

// NewRedisClient creates a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// WithMetrics records hit and miss counts on m.
func (c *ScoreCache) WithMetrics(m *observability.Metrics) *ScoreCache {
	c.metrics = m
	return c
}

// Key returns the hash key.
func (c *ScoreCache) Key() string {
	return c.key
}

// runKey holds the run id of the last batch written.
func (c *ScoreCache) runKey() string {
	return c.key + ":run"
}

// Name returns sink name.
func (c *ScoreCache) Name() string { return "redis_cache" }

// Write stores every record of the batch with one HSET and records the run id.
func (c *ScoreCache) Write(ctx context.Context, batch *domain.ScoreBatch) error {
	records := batch.Records()
	if len(records) == 0 {
		return nil
	}
	values := make([]interface{}, 0, 2*len(records))
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal score for %s: %w", r.WalletAddress, err)
		}
		values = append(values, r.WalletAddress, string(data))
	}

	if err := c.client.HSet(ctx, c.key, values...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", c.key, err)
	}
	if err := c.client.Set(ctx, c.runKey(), batch.RunID, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", c.runKey(), err)
	}
	return nil
}

// Put stores one record.
func (c *ScoreCache) Put(ctx context.Context, r *domain.WalletScoreRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal score for %s: %w", r.WalletAddress, err)
	}
	return c.client.HSet(ctx, c.key, r.WalletAddress, string(data)).Err()
}

// Get returns the cached record for wallet, or storage.ErrNotFound.
func (c *ScoreCache) Get(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error) {
	data, err := c.client.HGet(ctx, c.key, wallet).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.RecordCacheLookup(false)
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var r domain.WalletScoreRecord
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score for %s: %w", wallet, err)
	}
	c.metrics.RecordCacheLookup(true)
	return &r, nil
}

// LastRunID returns the run id of the last batch written, or "" if none.
func (c *ScoreCache) LastRunID(ctx context.Context) (string, error) {
	id, err := c.client.Get(ctx, c.runKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

// Ping checks the connection.
func (c *ScoreCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
