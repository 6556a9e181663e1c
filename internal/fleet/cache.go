package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rentacar/internal/metrics"
	"rentacar/internal/models"
)

const (
	cacheKeyCars   = "fleet:cars"
	cacheKeyPrefix = "fleet:"
)

// CachedSource is a read-through redis cache in front of another Source.
type CachedSource struct {
	next     Source
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewCachedSource wraps next. A nil client or non-positive ttl disables caching.
func NewCachedSource(next Source, redisClient *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{next: next, redis: redisClient, cacheTTL: ttl}
}

func (c *CachedSource) ListCars(ctx context.Context) ([]models.Car, error) {
	var cars []models.Car
	if c.readCache(ctx, cacheKeyCars, &cars) {
		return cars, nil
	}

	cars, err := c.next.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKeyCars, cars)
	return cars, nil
}

func (c *CachedSource) GetCar(ctx context.Context, id string) (*models.Car, error) {
	cacheKey := fmt.Sprintf("fleet:car:%s", id)
	var car models.Car
	if c.readCache(ctx, cacheKey, &car) {
		return &car, nil
	}

	found, err := c.next.GetCar(ctx, id)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, found)
	return found, nil
}

// Invalidate drops every cached fleet entry.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	iter := c.redis.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan fleet cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

func (c *CachedSource) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		metrics.IncFleetCache("miss")
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		metrics.IncFleetCache("miss")
		return false
	}
	metrics.IncFleetCache("hit")
	return true
}

func (c *CachedSource) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}
