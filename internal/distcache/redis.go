// File path: internal/distcache/redis.go
package distcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
)

const defaultTTL = 2 * time.Minute

// Cache shares ranking results across requests and processes through Redis.
// It is strictly best-effort: a miss or any Redis failure reads as
// "recompute", never as an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// LoadConfig reads Redis settings from the environment. An empty REDIS_ADDR
// means the distributed cache is not deployed.
func LoadConfig() Config {
	cfg := Config{
		Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Password: os.Getenv("REDIS_PASSWORD"),
		Prefix:   "lms:ctx:",
		TTL:      defaultTTL,
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_CACHE_TTL")); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.TTL = ttl
		}
	}
	return cfg
}

// Connect establishes and verifies a Redis connection.
func Connect(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl, prefix: cfg.Prefix}, nil
}

// Get loads and decodes the value under key into out, reporting whether a
// usable entry was found.
func (c *Cache) Get(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			common.Logger().Warn("distcache: get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		common.Logger().Warn("distcache: cached value undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores the value under key with the configured TTL, best-effort.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		common.Logger().Warn("distcache: value not serializable", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		common.Logger().Warn("distcache: set failed", "key", key, "error", err)
	}
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
