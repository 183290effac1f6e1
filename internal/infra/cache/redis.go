// Package cache provides the Redis-backed product read cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const (
	defaultProductTTL = 10 * time.Minute
	// maxJitter spreads expiries so hot products do not all miss at once.
	maxJitter = 2 * time.Minute
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New returns a Redis cache, or a no-op cache when no address is configured.
func New(params Params) repository.ProductCache {
	cfg := params.Config.Redis
	if cfg == nil || cfg.Addr == "" {
		params.Logger.Info("Redis not configured, product cache disabled")

		return NoopCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			// The cache is optional: log and carry on when Redis is down.
			if err := client.Ping(ctx).Err(); err != nil {
				params.Logger.Warn("Redis ping failed, reads fall through to Postgres", slog.Any("error", err))
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return NewRedisCache(client, cfg.ProductTTL)
}

// RedisCache stores products as JSON under product:<id>.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultProductTTL
	}

	return &RedisCache{client: client, baseTTL: ttl}
}

func (r *RedisCache) Get(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get failed")
	}

	var product entity.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, errors.Wrap(err, "unmarshal product failed")
	}

	return &product, nil
}

func (r *RedisCache) Set(ctx context.Context, product *entity.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return errors.Wrap(err, "marshal product failed")
	}

	ttl := r.baseTTL + rand.N(maxJitter)
	if err := r.client.Set(ctx, cacheKey(product.ID), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set failed")
	}

	return nil
}

func (r *RedisCache) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "redis delete failed")
	}

	return nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

// NoopCache always misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, uuid.UUID) (*entity.Product, error) {
	return nil, repository.ErrCacheMiss
}

func (NoopCache) Set(context.Context, *entity.Product) error { return nil }

func (NoopCache) Delete(context.Context, ...uuid.UUID) error { return nil }
