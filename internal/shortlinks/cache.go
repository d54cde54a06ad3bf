package shortlinks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/foodgram/backend/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get for unknown codes
var ErrCacheMiss = errors.New("short link not cached").Reason("CacheMiss")

// Cache maps short codes to recipe ids
type Cache interface {
	Get(ctx context.Context, code string) (uint, error)
	Set(ctx context.Context, code string, recipeID uint) error
}

// RedisCache stores codes as "shortlink:<code>" keys with a TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(code string) string {
	return "shortlink:" + code
}

func (c *RedisCache) Get(ctx context.Context, code string) (uint, error) {
	id, err := c.client.Get(ctx, cacheKey(code)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read short link cache: %w", err)
	}
	return uint(id), nil
}

func (c *RedisCache) Set(ctx context.Context, code string, recipeID uint) error {
	if err := c.client.Set(ctx, cacheKey(code), strconv.FormatUint(uint64(recipeID), 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write short link cache: %w", err)
	}
	return nil
}
