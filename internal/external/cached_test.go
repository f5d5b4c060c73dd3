package external

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
	"github.com/wonny/tickerscope/pkg/redis"
)

type countingProvider struct {
	calls int
	snap  *contracts.FundamentalsSnapshot
}

func (p *countingProvider) FetchFundamentals(context.Context, string) *contracts.FundamentalsSnapshot {
	p.calls++
	return p.snap
}

func TestCachedFundamentals(t *testing.T) {
	base := &countingProvider{snap: &contracts.FundamentalsSnapshot{
		Name:          "Sundial",
		MarketCap:     5e8,
		PERatio:       contracts.Float64Ptr(12),
		RecentFilings: contracts.IntPtr(3),
	}}
	c := NewCachedFundamentals(base, redis.NewCache(nil, "test"), time.Minute, logger.Nop())

	first := c.FetchFundamentals(context.Background(), "sndl")
	second := c.FetchFundamentals(context.Background(), "SNDL")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 1, base.calls, "second call served from cache")
	assert.Equal(t, 5e8, second.MarketCap)
	require.NotNil(t, second.PERatio)
	assert.Equal(t, 12.0, *second.PERatio)
	require.NotNil(t, second.RecentFilings)
	assert.Equal(t, 3, *second.RecentFilings)
}

func TestCachedFundamentals_MissNotCached(t *testing.T) {
	base := &countingProvider{}
	c := NewCachedFundamentals(base, redis.NewCache(nil, "test"), 0, logger.Nop())

	assert.Nil(t, c.FetchFundamentals(context.Background(), "NOPE"))
	assert.Nil(t, c.FetchFundamentals(context.Background(), "NOPE"))
	assert.Equal(t, 2, base.calls)
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{`12.5`, 12.5, false},
		{`"1,234"`, 1234, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"abc"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f FlexFloat
			err := f.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, float64(f))
		})
	}
}
