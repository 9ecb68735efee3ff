package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/config"
	"github.com/rzpsarthak13/schema-forge/internal/logging"
)

// redisClient is the part of *redis.Client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisStore implements Store on a single Redis node.
type RedisStore struct {
	client redisClient
	log    *zap.Logger
	closed bool
}

// NewRedisStore connects to the first configured endpoint and pings it.
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("at least one endpoint is required")
	}

	// TODO: use redis.NewClusterClient when more than one endpoint is configured.
	client := redis.NewClient(redisOptions(cfg))

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(client, logger), nil
}

func newRedisStore(client redisClient, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		log:    logging.OrNop(logger).Named("snapshot.redis"),
	}
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Endpoints[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.log.Debug("key not found", zap.String("key", key))
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	r.log.Debug("key retrieved", zap.String("key", key), zap.Int("bytes", len(val)))
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	r.log.Debug("key stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}

type redisFactory struct{}

func (redisFactory) Type() string { return "redis" }

func (redisFactory) Validate(cfg config.SnapshotConfig) error {
	if len(cfg.Redis.Endpoints) == 0 {
		return fmt.Errorf("redis.endpoints is required")
	}
	if cfg.Redis.PoolSize < 0 {
		return fmt.Errorf("redis.pool_size must be non-negative")
	}
	if cfg.Redis.MinIdleConns < 0 {
		return fmt.Errorf("redis.min_idle_conns must be non-negative")
	}
	if cfg.Redis.PoolSize > 0 && cfg.Redis.MinIdleConns > cfg.Redis.PoolSize {
		return fmt.Errorf("redis.min_idle_conns cannot exceed redis.pool_size")
	}
	return nil
}

func (redisFactory) Create(cfg config.SnapshotConfig, logger *zap.Logger) (Store, error) {
	return NewRedisStore(cfg.Redis, logger)
}

func init() {
	RegisterFactory(redisFactory{})
}
