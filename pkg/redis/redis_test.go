package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/logger"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNewOrLocal(t *testing.T) {
	t.Run("disabled config", func(t *testing.T) {
		client := NewOrLocal(&config.Config{}, logger.Nop())
		assert.False(t, client.Enabled())
		assert.NoError(t, client.FallbackReason())
	})

	t.Run("unreachable server falls back to memory", func(t *testing.T) {
		cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1"}}

		_, err := New(cfg)
		require.Error(t, err)

		client := NewOrLocal(cfg, logger.Nop())
		assert.False(t, client.Enabled())
		assert.Error(t, client.FallbackReason())
		assert.NoError(t, client.Close())

		// 대체 캐시로 그대로 동작
		cache := NewCache(client, "tickerscope")
		ctx := context.Background()
		require.NoError(t, cache.Set(ctx, FundamentalsKey("gme"), 1, TTLLong))
		var v int
		found, err := cache.Get(ctx, FundamentalsKey("GME"), &v)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 1, v)
	})
}

func TestCache_LocalFallback(t *testing.T) {
	client, _ := New(&config.Config{})
	cache := NewCache(client, "tickerscope")
	ctx := context.Background()

	type snapshot struct {
		Ticker    string  `json:"ticker"`
		MarketCap float64 `json:"market_cap"`
	}

	var got snapshot
	found, err := cache.Get(ctx, FundamentalsKey("gme"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, FundamentalsKey("gme"), snapshot{"GME", 9.5e9}, TTLLong))

	found, err = cache.Get(ctx, FundamentalsKey("GME"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snapshot{"GME", 9.5e9}, got)

	require.NoError(t, cache.Delete(ctx, FundamentalsKey("GME")))
	found, _ = cache.Get(ctx, FundamentalsKey("GME"), &got)
	assert.False(t, found)
}

func TestCache_Expiry(t *testing.T) {
	cache := NewCache(nil, "t")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var v int
	found, err := cache.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFundamentalsKey(t *testing.T) {
	assert.Equal(t, "fundamentals:AMC", FundamentalsKey("amc"))
}
