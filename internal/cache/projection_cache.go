package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plannink/forecast-api/internal/config"
	"github.com/plannink/forecast-api/internal/domain"
)

const (
	projectionKeyPrefix    = "forecast:projections"
	projectionScanBatchSize = 100
)

// ProjectionCache holds regenerated projection sequences per product code.
// Transit mutations and recalculation invalidate the affected entries.
type ProjectionCache interface {
	Get(ctx context.Context, code string) ([]domain.Projection, bool, error)
	Set(ctx context.Context, code string, projections []domain.Projection) error
	Invalidate(ctx context.Context, code string) error
	InvalidateAll(ctx context.Context) error
}

type redisProjectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopProjectionCache struct{}

func NewProjectionCache(cfg config.CacheConfig) (ProjectionCache, error) {
	if !cfg.Enabled {
		return &noopProjectionCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisProjectionCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopProjectionCache() ProjectionCache {
	return &noopProjectionCache{}
}

func projectionKey(code string) string {
	return fmt.Sprintf("%s:%s", projectionKeyPrefix, code)
}

func (c *redisProjectionCache) Get(ctx context.Context, code string) ([]domain.Projection, bool, error) {
	payload, err := c.client.Get(ctx, projectionKey(code)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var projections []domain.Projection
	if err := json.Unmarshal(payload, &projections); err != nil {
		return nil, false, fmt.Errorf("decode projection cache: %w", err)
	}

	return projections, true, nil
}

func (c *redisProjectionCache) Set(ctx context.Context, code string, projections []domain.Projection) error {
	payload, err := json.Marshal(projections)
	if err != nil {
		return fmt.Errorf("encode projection cache: %w", err)
	}

	if err := c.client.Set(ctx, projectionKey(code), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisProjectionCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, projectionKey(code)).Err()
}

func (c *redisProjectionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, projectionKeyPrefix, projectionScanBatchSize)
}

func (n *noopProjectionCache) Get(ctx context.Context, code string) ([]domain.Projection, bool, error) {
	return nil, false, nil
}

func (n *noopProjectionCache) Set(ctx context.Context, code string, projections []domain.Projection) error {
	return nil
}

func (n *noopProjectionCache) Invalidate(ctx context.Context, code string) error {
	return nil
}

func (n *noopProjectionCache) InvalidateAll(ctx context.Context) error {
	return nil
}
