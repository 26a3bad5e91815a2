// Package redis provides a Redis key-value backend for the stores in
// internal/store.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// Client is the subset of the go-redis client the store uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// KVStore implements store.KeyValueStore on Redis string keys. Values never
// expire.
type KVStore struct {
	client Client
	logger *slog.Logger
}

var _ store.KeyValueStore = (*KVStore)(nil)

// NewKVStore wraps an existing client.
func NewKVStore(client Client, l *slog.Logger) *KVStore {
	if l == nil {
		l = slog.Default()
	}
	return &KVStore{
		client: client,
		logger: l.With(slog.String("component", "redis_kv_store")),
	}
}

// Open parses a redis:// URL, configures the connection pool and verifies
// the connection with a ping.
func Open(ctx context.Context, url string, l *slog.Logger) (*KVStore, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	kv := NewKVStore(client, l)
	kv.logger.Info("redis connection established", slog.String("addr", opts.Addr))
	return kv, nil
}

// Get implements store.KeyValueStore.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read key",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements store.KeyValueStore.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to write key",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *KVStore) Close() error {
	return s.client.Close()
}
