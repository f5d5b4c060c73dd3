package contracts

import (
	"context"
	"time"
)

// Provider interfaces never return errors.
// ⭐ SSOT: 실패는 nil/empty sentinel + 로그로 처리 (호출자는 예외 처리 불필요)

// SentimentProvider returns zero or more records for a ticker
type SentimentProvider interface {
	Source() SentimentSource
	FetchSentiment(ctx context.Context, ticker string) []SentimentRecord
}

// PriceProvider returns the latest snapshot, nil when unavailable
type PriceProvider interface {
	FetchPrice(ctx context.Context, ticker string) *PriceSnapshot
}

// CandleProvider returns daily candles in [from, to], empty when unavailable
type CandleProvider interface {
	FetchCandles(ctx context.Context, ticker string, from, to time.Time) []HistoricalCandle
}

// FundamentalsProvider returns company data, nil when unavailable
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, ticker string) *FundamentalsSnapshot
}

// Notifier delivers one payload; true means the channel confirmed delivery
type Notifier interface {
	Channel() string
	Send(ctx context.Context, payload AlertPayload) bool
}

// AnalystInput is everything the analytical collaborator sees
type AnalystInput struct {
	Ticker       string
	Sentiment    MergedSentiment
	Price        *PriceSnapshot
	Fundamentals *FundamentalsSnapshot
	Scores       ScoreSet
	Preliminary  ClassificationResult
}

// Analyst is the optional AI/analytical collaborator
type Analyst interface {
	Analyze(ctx context.Context, in AnalystInput) (*AIAnalysis, error)
}
