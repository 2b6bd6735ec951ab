package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
)

const productKeyPrefix = "easyshops:product:"

// ProductCache is a read-through cache for product detail lookups.
type ProductCache interface {
	// Get returns the cached product. A miss yields (nil, false, nil).
	Get(ctx context.Context, id int64) (*domain.Product, bool, error)
	Set(ctx context.Context, product *domain.Product) error
	Invalidate(ctx context.Context, id int64) error
}

// RedisProductCache implements ProductCache on Redis with a fixed TTL.
type RedisProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisProductCache creates a Redis-backed product cache.
func NewRedisProductCache(client redis.Cmdable, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *RedisProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get product %d: %w", id, err)
	}

	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached product %d: %w", id, err)
	}
	return &p, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product %d: %w", product.ID, err)
	}
	if err := c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product %d: %w", product.ID, err)
	}
	return nil
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del product %d: %w", id, err)
	}
	return nil
}

// NoopProductCache never stores anything. It is used when Redis is disabled.
type NoopProductCache struct{}

func (NoopProductCache) Get(context.Context, int64) (*domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(context.Context, *domain.Product) error { return nil }

func (NoopProductCache) Invalidate(context.Context, int64) error { return nil }
