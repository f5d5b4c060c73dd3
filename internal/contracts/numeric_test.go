package contracts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact", 5.0, 5.0},
		{"float noise", (10.5 - 10) / 10 * 100, 5.0},
		{"negative", -2.0000000000000018, -2.0},
		{"half up", 12.005, 12.01},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-12))
	assert.Equal(t, 100, ClampScore(140.2))
	assert.Equal(t, 43, ClampScore(42.5))
	assert.Equal(t, 0, ClampScore(math.NaN()))
	assert.Equal(t, 100, ClampScore(math.Inf(1)))
}

func TestMergedSentimentRank(t *testing.T) {
	m := MergedSentiment{Sources: map[SentimentSource]SentimentRecord{
		SourceStocktwits: {Rank: IntPtr(1)},
	}}
	_, ok := m.Rank()
	assert.False(t, ok, "rank only comes from the rank source")

	m.Sources[SourceApeWisdom] = SentimentRecord{Rank: IntPtr(7)}
	rank, ok := m.Rank()
	assert.True(t, ok)
	assert.Equal(t, 7, rank)
}

func TestFundamentalsExchange(t *testing.T) {
	f := &FundamentalsSnapshot{Exchange: "NASDAQ"}
	assert.True(t, f.IsMajorExchange())
	assert.False(t, f.IsOTC())

	f.Exchange = "OTCQB"
	assert.False(t, f.IsMajorExchange())
	assert.True(t, f.IsOTC())

	f.Exchange = "Pink Sheets"
	assert.True(t, f.IsOTC())
}

func TestFloor2(t *testing.T) {
	assert.Equal(t, 3.00, Floor2(3.3395*0.9))
	assert.Equal(t, 9.0, Floor2(10*0.9))
	assert.Equal(t, -1.01, Floor2(-1.001))
}
