package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantClass  contracts.Classification
		wantTarget bool
		wantErr    bool
	}{
		{
			name:       "plain json with target",
			text:       `{"classification":"runner","confidence":0.8,"bull_case":"squeeze","bear_case":"dilution","catalysts":["earnings"],"target_price":14.5,"target_reasoning":"prior high","target_confidence":0.6}`,
			wantClass:  contracts.ClassRunner,
			wantTarget: true,
		},
		{
			name:      "fenced and upper case",
			text:      "```json\n{\"classification\":\"VALUE\",\"confidence\":0.7,\"bull_case\":\"cheap\",\"bear_case\":\"slow\"}\n```",
			wantClass: contracts.ClassValue,
		},
		{
			name:      "surrounding prose",
			text:      `Here you go: {"classification":"watch","confidence":0.4,"bull_case":"","bear_case":"","target_price":0}`,
			wantClass: contracts.ClassWatch,
		},
		{name: "unknown class", text: `{"classification":"moon","confidence":1}`, wantErr: true},
		{name: "not json", text: `I cannot help with that`, wantErr: true},
		{name: "empty", text: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, contracts.ErrAnalyticalParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantClass, got.Classification)
			assert.Equal(t, tt.wantTarget, got.Target != nil)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	in := contracts.AnalystInput{
		Ticker: "SNDL",
		Sentiment: contracts.MergedSentiment{
			Ticker:        "SNDL",
			TotalMentions: 320,
			AvgSentiment:  42,
			MaxMomentum:   3.1,
			SourceCount:   2,
			Sources: map[contracts.SentimentSource]contracts.SentimentRecord{
				contracts.SourceApeWisdom:  {Rank: contracts.IntPtr(4)},
				contracts.SourceStocktwits: {},
			},
		},
		Price:        &contracts.PriceSnapshot{Price: 2.15, RelativeVolume: 3.2},
		Fundamentals: &contracts.FundamentalsSnapshot{Name: "SNDL Inc.", MarketCap: 5e8, PERatio: contracts.Float64Ptr(11)},
		Scores:       contracts.ScoreSet{Attention: 90, Momentum: 70, Fundamentals: 55, Risk: 40},
		Preliminary:  contracts.ClassificationResult{Classification: contracts.ClassRunner},
	}

	prompt := BuildPrompt(in)
	assert.Contains(t, prompt, "Ticker: SNDL")
	assert.Contains(t, prompt, "mentions rank: #4")
	assert.Contains(t, prompt, "sources: apewisdom, stocktwits")
	assert.Contains(t, prompt, "price: $2.15")
	assert.Contains(t, prompt, "P/E: 11.00")
	assert.NotContains(t, prompt, "P/S")
	assert.Contains(t, prompt, "rule-based classification: runner")

	assert.Contains(t, BuildPrompt(contracts.AnalystInput{Ticker: "X"}), "- unavailable")
}

func TestAnalyst_Analyze(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a := newAnalyst(func(ctx context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "Ticker: GME")
			return `{"classification":"both","confidence":0.9,"bull_case":"a","bear_case":"b"}`, nil
		}, 0, time.Second, logger.Nop())

		got, err := a.Analyze(context.Background(), contracts.AnalystInput{Ticker: "GME"})
		require.NoError(t, err)
		assert.Equal(t, contracts.ClassBoth, got.Classification)
	})

	t.Run("transport error", func(t *testing.T) {
		a := newAnalyst(func(context.Context, string) (string, error) {
			return "", errors.New("quota exceeded")
		}, 0, time.Second, logger.Nop())

		_, err := a.Analyze(context.Background(), contracts.AnalystInput{Ticker: "GME"})
		assert.True(t, errors.Is(err, contracts.ErrProviderUnavailable))
	})

	t.Run("cancelled while rate limited", func(t *testing.T) {
		a := newAnalyst(func(context.Context, string) (string, error) {
			return `{"classification":"watch","confidence":0.5,"bull_case":"","bear_case":""}`, nil
		}, 1, time.Second, logger.Nop())

		_, err := a.Analyze(context.Background(), contracts.AnalystInput{Ticker: "A"})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = a.Analyze(ctx, contracts.AnalystInput{Ticker: "B"})
		assert.Error(t, err)
	})
}
