// Package redis provides the production outbound.CacheRepository
// adapter (Get/Set/Delete with a TTL), backed by go-redis instead of the
// in-memory map used for local development. The container provides it,
// but no application service reads from or writes to the cache, so no
// decision state is cached or invalidated through it.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/infrastructure/config"
)

// CacheRepository implements outbound.CacheRepository against a single
// Redis instance.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(cfg *config.Config, logger *zap.Logger) *CacheRepository {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.Database,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	return &CacheRepository{client: client, logger: logger.Named("redis_cache")}
}

// Ping is the liveness probe /healthz calls, the same role
// postgres.ConnectionManager.Ping plays for the database.
func (r *CacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *CacheRepository) Close() error {
	return r.client.Close()
}
