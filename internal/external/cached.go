package external

import (
	"context"
	"time"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
	"github.com/wonny/tickerscope/pkg/redis"
)

// FundamentalsTTL is how long a fundamentals snapshot is reused.
// Finviz updates most fields once per session.
const FundamentalsTTL = 6 * time.Hour

// CachedFundamentals memoizes a fundamentals provider in Redis (or process
// memory when Redis is disabled). Misses are not cached.
type CachedFundamentals struct {
	base   contracts.FundamentalsProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedFundamentals wraps base with cache
func NewCachedFundamentals(base contracts.FundamentalsProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedFundamentals {
	if ttl <= 0 {
		ttl = FundamentalsTTL
	}
	return &CachedFundamentals{
		base:   base,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("fundamentals_cache"),
	}
}

// FetchFundamentals implements contracts.FundamentalsProvider
func (c *CachedFundamentals) FetchFundamentals(ctx context.Context, ticker string) *contracts.FundamentalsSnapshot {
	key := redis.FundamentalsKey(ticker)

	var snap contracts.FundamentalsSnapshot
	hit, err := c.cache.Get(ctx, key, &snap)
	if err != nil {
		// 캐시 장애는 원본 조회로 우회
		c.logger.WithError(err).WithTicker(ticker).Warn("Cache read failed")
	}
	if hit {
		return &snap
	}

	fresh := c.base.FetchFundamentals(ctx, ticker)
	if fresh == nil {
		return nil
	}
	if err := c.cache.Set(ctx, key, fresh, c.ttl); err != nil {
		c.logger.WithError(err).WithTicker(ticker).Warn("Cache write failed")
	}
	return fresh
}
