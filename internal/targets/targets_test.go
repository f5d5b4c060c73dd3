package targets

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/strategyconfig"
	"github.com/wonny/tickerscope/pkg/logger"
)

func TestTechnical(t *testing.T) {
	tests := []struct {
		name           string
		p              *contracts.PriceSnapshot
		wantTarget     float64
		wantConfidence float64
	}{
		{
			name:           "resistance tier with momentum boost",
			p:              &contracts.PriceSnapshot{Price: 10, High52w: 20, Low52w: 5, Change5dPercent: 12},
			wantTarget:     17.06,
			wantConfidence: 0.65,
		},
		{
			name:           "bottom of range reverts to mid",
			p:              &contracts.PriceSnapshot{Price: 6, High52w: 20, Low52w: 5},
			wantTarget:     12.5,
			wantConfidence: 0.7,
		},
		{
			name:           "upper range with negative week",
			p:              &contracts.PriceSnapshot{Price: 14, High52w: 20, Low52w: 5, Change5dPercent: -12},
			wantTarget:     18.05,
			wantConfidence: 0.5,
		},
		{
			name:           "near highs",
			p:              &contracts.PriceSnapshot{Price: 19, High52w: 20, Low52w: 5},
			wantTarget:     20.9,
			wantConfidence: 0.4,
		},
		{
			name:           "degenerate range",
			p:              &contracts.PriceSnapshot{Price: 10, High52w: 10, Low52w: 10},
			wantTarget:     11,
			wantConfidence: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Technical(tt.p)
			require.True(t, ok)
			assert.Equal(t, contracts.MethodTechnical, got.Method)
			assert.InDelta(t, tt.wantTarget, got.Target, 1e-9)
			assert.Equal(t, tt.wantConfidence, got.Confidence)
		})
	}

	_, ok := Technical(nil)
	assert.False(t, ok)
	_, ok = Technical(&contracts.PriceSnapshot{Price: 0})
	assert.False(t, ok)
}

func TestFundamental(t *testing.T) {
	cfg := strategyconfig.Default().Targets

	tests := []struct {
		name           string
		f              *contracts.FundamentalsSnapshot
		wantTarget     float64
		wantConfidence float64
	}{
		{
			name: "sector pe with growth premium",
			f: &contracts.FundamentalsSnapshot{
				Sector: "Technology", PERatio: contracts.Float64Ptr(10), RevenueGrowth: contracts.Float64Ptr(25),
			},
			wantTarget:     26.52, // fair 28 * 1.2 = 33.6, 0.7*33.6 + 0.3*10
			wantConfidence: 0.6,
		},
		{
			name:           "unknown sector uses default pe",
			f:              &contracts.FundamentalsSnapshot{Sector: "Shell Companies", PERatio: contracts.Float64Ptr(10)},
			wantTarget:     13.5,
			wantConfidence: 0.6,
		},
		{
			name:           "negative pe falls through to ps",
			f:              &contracts.FundamentalsSnapshot{PERatio: contracts.Float64Ptr(-4), PSRatio: contracts.Float64Ptr(2)},
			wantTarget:     11.5, // 0.6*12.5 + 0.4*10
			wantConfidence: 0.4,
		},
		{
			name:           "no ratios",
			f:              &contracts.FundamentalsSnapshot{},
			wantTarget:     11.5,
			wantConfidence: 0.3,
		},
		{
			name:           "no fundamentals",
			f:              nil,
			wantTarget:     11.5,
			wantConfidence: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Fundamental(10, tt.f, cfg)
			require.True(t, ok)
			assert.InDelta(t, tt.wantTarget, got.Target, 1e-9)
			assert.Equal(t, tt.wantConfidence, got.Confidence)
		})
	}
}

func TestRiskBased(t *testing.T) {
	tests := []struct {
		risk       int
		wantTarget float64
		wantStop   float64
	}{
		{20, 12.5, 9.2},
		{40, 12, 9},
		{60, 11.5, 8.8},
		{85, 11, 8.5},
	}

	for _, tt := range tests {
		got, stop, ok := RiskBased(10, tt.risk)
		require.True(t, ok)
		assert.InDelta(t, tt.wantTarget, got.Target, 1e-9, "risk %d", tt.risk)
		assert.InDelta(t, tt.wantStop, stop, 1e-9, "risk %d", tt.risk)
		assert.Equal(t, 0.7, got.Confidence)
	}
}

func TestAI(t *testing.T) {
	others := []contracts.TargetDetail{{Target: 12}, {Target: 15}, {Target: 18}}

	got := AI(nil, others...)
	assert.Equal(t, 15.0, got.Target)
	assert.Equal(t, 0.5, got.Confidence)

	got = AI(&contracts.AITarget{Target: 21.333, Confidence: 0.8, Reasoning: "catalyst"}, others...)
	assert.Equal(t, 21.33, got.Target)
	assert.Equal(t, 0.8, got.Confidence)
	assert.Equal(t, "catalyst", got.Reasoning)
}

func TestCalculate(t *testing.T) {
	p := &contracts.PriceSnapshot{Ticker: "GME", Price: 10, High52w: 20, Low52w: 5, Change5dPercent: 12}

	got, ok := Calculate(p, nil, 40, nil, strategyconfig.Default().Targets)
	require.True(t, ok)

	assert.Equal(t, 17.06, got.Technical)
	assert.Equal(t, 11.5, got.Fundamental)
	assert.Equal(t, 12.0, got.Risk)
	assert.Equal(t, 13.52, got.AI)
	assert.Equal(t, 13.81, got.Average)
	assert.Equal(t, 9.0, got.StopLoss)
	assert.Len(t, got.Details, 4)

	// 저위험 손절(-8%)도 10% 상한으로 제한
	got, _ = Calculate(p, nil, 10, nil, strategyconfig.Default().Targets)
	assert.Equal(t, 9.0, got.StopLoss)

	got, _ = Calculate(p, nil, 85, nil, strategyconfig.Default().Targets)
	assert.Equal(t, 8.5, got.StopLoss)

	_, ok = Calculate(nil, nil, 10, nil, strategyconfig.Default().Targets)
	assert.False(t, ok)
}

func TestCalculate_Invariants(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	cfg := strategyconfig.Default().Targets

	for i := 0; i < 2000; i++ {
		low := 0.01 + r.Float64()*50
		high := low + r.Float64()*100
		p := &contracts.PriceSnapshot{
			Price:           0.01 + r.Float64()*160,
			High52w:         high,
			Low52w:          low,
			Change5dPercent: r.Float64()*60 - 30,
		}
		f := &contracts.FundamentalsSnapshot{Sector: "Technology"}
		if r.Intn(2) == 0 {
			f.PERatio = contracts.Float64Ptr(r.Float64()*80 - 10)
		}
		if r.Intn(2) == 0 {
			f.PSRatio = contracts.Float64Ptr(r.Float64() * 20)
		}
		var ai *contracts.AITarget
		if r.Intn(2) == 0 {
			ai = &contracts.AITarget{Target: p.Price * (0.5 + r.Float64()), Confidence: r.Float64()}
		}

		got, ok := Calculate(p, f, r.Intn(101), ai, cfg)
		require.True(t, ok)

		lo := math.Min(math.Min(got.Technical, got.Fundamental), math.Min(got.AI, got.Risk))
		hi := math.Max(math.Max(got.Technical, got.Fundamental), math.Max(got.AI, got.Risk))
		assert.GreaterOrEqual(t, got.Average, lo)
		assert.LessOrEqual(t, got.Average, hi)
		assert.LessOrEqual(t, got.StopLoss, p.Price*MaxStopFraction)
	}
}

func TestEngine_Calculate(t *testing.T) {
	e := NewEngine(strategyconfig.Default().Targets, logger.Nop())

	_, ok := e.Calculate(nil, nil, 50, nil)
	assert.False(t, ok)

	p := &contracts.PriceSnapshot{Ticker: "AMC", Price: 4, High52w: 10, Low52w: 2}
	got, ok := e.Calculate(p, nil, 50, nil)
	require.True(t, ok)
	assert.Greater(t, got.Average, 0.0)
}
