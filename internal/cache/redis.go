package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "bce:"

// invalidationChannel carries keys deleted on one node so other nodes can
// drop them from their local cache.
const invalidationChannel = redisPrefix + "invalidate"

// RedisCache implements Cache using Redis.
// Used as the Pro tier cache and as L2 in two-phase caching.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, tenantID string, key string) ([]byte, error) {
	if tenantID == "" {
		return nil, errTenantRequired
	}

	val, err := c.client.Get(ctx, redisPrefix+makeKey(tenantID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value in Redis with TTL.
func (c *RedisCache) Set(ctx context.Context, tenantID string, key string, value []byte, ttl time.Duration) error {
	if tenantID == "" {
		return errTenantRequired
	}

	return c.client.Set(ctx, redisPrefix+makeKey(tenantID, key), value, ttl).Err()
}

// Delete removes a value from Redis and announces the invalidation.
func (c *RedisCache) Delete(ctx context.Context, tenantID string, key string) error {
	if tenantID == "" {
		return errTenantRequired
	}

	fullKey := makeKey(tenantID, key)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, redisPrefix+fullKey)
	pipe.Publish(ctx, invalidationChannel, fullKey)
	_, err := pipe.Exec(ctx)
	return err
}

// GetExceptionItem retrieves a cached exception item.
func (c *RedisCache) GetExceptionItem(ctx context.Context, tenantID string, itemNo int) (*domain.ExceptionItem, error) {
	data, err := c.Get(ctx, tenantID, ItemKey(itemNo))
	if err != nil {
		return nil, err
	}
	return decodeItem(data)
}

// SetExceptionItem caches an exception item.
func (c *RedisCache) SetExceptionItem(ctx context.Context, tenantID string, item *domain.ExceptionItem, ttl time.Duration) error {
	data, err := encodeItem(item)
	if err != nil {
		return err
	}
	return c.Set(ctx, tenantID, ItemKey(item.ItemNo), data, ttl)
}

// Ping checks Redis connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
