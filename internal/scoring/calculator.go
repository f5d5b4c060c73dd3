package scoring

import (
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Inputs are the three snapshots scores are derived from.
// Price and Fundamentals may be nil (provider unavailable).
type Inputs struct {
	Sentiment    contracts.MergedSentiment
	Price        *contracts.PriceSnapshot
	Fundamentals *contracts.FundamentalsSnapshot
}

// Calculate derives the full ScoreSet. Pure: identical inputs give identical scores.
// ⭐ SSOT: 점수 계산은 여기서만
func Calculate(in Inputs) contracts.ScoreSet {
	attention := Attention(in.Sentiment)
	fundamentals := Fundamentals(in.Fundamentals)

	return contracts.ScoreSet{
		Attention:    attention,
		Momentum:     Momentum(in.Price),
		Fundamentals: fundamentals,
		Risk:         Risk(attention, fundamentals, in.Sentiment, in.Price, in.Fundamentals),
	}
}

// Calculator wraps Calculate with debug logging
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new score calculator
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log,
	}
}

// Calculate computes scores for one ticker
func (c *Calculator) Calculate(in Inputs) contracts.ScoreSet {
	scores := Calculate(in)

	c.logger.WithFields(map[string]interface{}{
		"ticker":       in.Sentiment.Ticker,
		"attention":    scores.Attention,
		"momentum":     scores.Momentum,
		"fundamentals": scores.Fundamentals,
		"risk":         scores.Risk,
		"has_price":    in.Price != nil,
		"has_funds":    in.Fundamentals != nil,
	}).Debug("Calculated scores")

	return scores
}
