package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Client wraps the Redis client with additional utilities
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool

	// fallback 은 설정상 활성화였지만 연결 실패로 메모리 캐시를 쓰는 경우의 원인
	fallback error
}

// New creates a new Redis client. A disabled config yields a client whose
// caches fall back to process memory.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{
		rdb:     rdb,
		enabled: true,
	}, nil
}

// NewOrLocal connects like New but never fails: an unreachable server yields a
// disabled client so fundamentals caching falls back to process memory.
// FallbackReason reports why.
func NewOrLocal(cfg *config.Config, log *logger.Logger) *Client {
	c, err := New(cfg)
	if err == nil {
		return c
	}
	log.WithComponent("redis").WithError(err).
		WithField("addr", fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)).
		Warn("Redis unavailable, using in-memory cache")
	return &Client{enabled: false, fallback: err}
}

// FallbackReason returns the connection error that forced the in-memory cache, if any
func (c *Client) FallbackReason() error {
	return c.fallback
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis returns the underlying redis client for advanced usage
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
