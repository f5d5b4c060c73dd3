package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache provides JSON caching backed by Redis, or by process memory when
// Redis is disabled.
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	local  *gocache.Cache
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	c := &Cache{
		client: client,
		prefix: prefix,
	}
	if client == nil || !client.Enabled() {
		c.local = gocache.New(TTLDaily, 10*time.Minute)
	}
	return c
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value into dest. Returns false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var data []byte
	if c.local != nil {
		v, ok := c.local.Get(c.key(key))
		if !ok {
			return false, nil
		}
		data = v.([]byte)
	} else {
		b, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("cache get failed: %w", err)
		}
		data = b
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	if c.local != nil {
		c.local.Set(c.key(key), data, ttl)
		return nil
	}
	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.local != nil {
		c.local.Delete(c.key(key))
		return nil
	}
	return c.client.Redis().Del(ctx, c.key(key)).Err()
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute
	TTLMedium = 10 * time.Minute
	TTLLong   = 1 * time.Hour
	TTLDaily  = 24 * time.Hour
)

// FundamentalsKey is the cache key for a ticker's fundamentals snapshot
func FundamentalsKey(ticker string) string {
	return fmt.Sprintf("fundamentals:%s", strings.ToUpper(ticker))
}
