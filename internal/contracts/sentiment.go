package contracts

import "time"

// SentimentSource identifies a crowd-sentiment provider
type SentimentSource string

const (
	SourceApeWisdom  SentimentSource = "apewisdom"
	SourceStocktwits SentimentSource = "stocktwits"
	SourceReddit     SentimentSource = "reddit"
	SourceNews       SentimentSource = "news"
)

// RankSource is the designated source whose rank feeds the attention score
const RankSource = SourceApeWisdom

// Valid reports whether s is one of the known sources
func (s SentimentSource) Valid() bool {
	switch s {
	case SourceApeWisdom, SourceStocktwits, SourceReddit, SourceNews:
		return true
	}
	return false
}

// SentimentRecord is one provider's view of a ticker. Immutable once produced.
type SentimentRecord struct {
	Ticker        string          `json:"ticker"`
	Source        SentimentSource `json:"source"`
	Mentions      int             `json:"mentions"`       // >= 0
	Sentiment     float64         `json:"sentiment"`      // -100 ~ 100
	MomentumRatio *float64        `json:"momentum_ratio"` // > 0, mentions now / mentions before
	Rank          *int            `json:"rank"`           // >= 1
	Timestamp     time.Time       `json:"timestamp"`
}

// MergedSentiment is the per-ticker blend of all sources for one run
type MergedSentiment struct {
	Ticker        string                              `json:"ticker"`
	TotalMentions int                                 `json:"total_mentions"`
	AvgSentiment  float64                             `json:"avg_sentiment"`
	MaxMomentum   float64                             `json:"max_momentum"`
	SourceCount   int                                 `json:"source_count"`
	Sources       map[SentimentSource]SentimentRecord `json:"sources"`
}

// Rank returns the rank reported by the designated rank source
func (m MergedSentiment) Rank() (int, bool) {
	rec, ok := m.Sources[RankSource]
	if !ok || rec.Rank == nil {
		return 0, false
	}
	return *rec.Rank, true
}
