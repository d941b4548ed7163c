package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU (Community) + Redis (Pro).
// All methods require tenantID for strict multi-tenancy isolation.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, tenantID string, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, tenantID string, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, tenantID string, key string) error

	// GetExceptionItem retrieves a cached exception item.
	// Returns nil, nil on a miss.
	GetExceptionItem(ctx context.Context, tenantID string, itemNo int) (*ExceptionItem, error)

	// SetExceptionItem caches an exception item.
	SetExceptionItem(ctx context.Context, tenantID string, item *ExceptionItem, ttl time.Duration) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string `yaml:"type" json:"type" env:"BCE_CACHE"`

	// Local LRU cache settings (Community tier)
	LocalMaxSize int           `yaml:"localMaxSize" json:"localMaxSize" env:"BCE_CACHE_SIZE"`
	LocalTTL     time.Duration `yaml:"localTtl" json:"localTtl" env:"BCE_CACHE_TTL"`

	// Redis settings (Pro tier)
	RedisAddr     string `yaml:"redisAddr" json:"redisAddr" env:"BCE_REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" json:"-" env:"BCE_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redisDb" json:"redisDb" env:"BCE_REDIS_DB"`

	// Two-phase settings
	EnableTwoPhase bool `yaml:"enableTwoPhase" json:"enableTwoPhase" env:"BCE_CACHE_TWO_PHASE"` // If true, check local first, then Redis

	// SequenceTTL is how long loaded exception items stay cached.
	SequenceTTL time.Duration `yaml:"sequenceTtl" json:"sequenceTtl" env:"BCE_SEQUENCE_TTL"`
}
