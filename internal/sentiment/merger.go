package sentiment

import (
	"strings"

	"github.com/wonny/tickerscope/internal/contracts"
)

// DefaultMomentum is reported when no source supplies a momentum ratio
const DefaultMomentum = 1.0

// Merge blends per-source records into one MergedSentiment.
// ⭐ SSOT: 소스별 센티먼트 병합은 여기서만
//
// Records for other tickers are ignored. When a source reports more than once
// the most recent record wins. No sources yields a neutral record, never nil.
func Merge(ticker string, records []contracts.SentimentRecord) contracts.MergedSentiment {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	merged := contracts.MergedSentiment{
		Ticker:      ticker,
		MaxMomentum: DefaultMomentum,
		Sources:     make(map[contracts.SentimentSource]contracts.SentimentRecord),
	}

	for _, rec := range records {
		if !strings.EqualFold(rec.Ticker, ticker) {
			continue
		}
		if prev, ok := merged.Sources[rec.Source]; ok && prev.Timestamp.After(rec.Timestamp) {
			continue
		}
		merged.Sources[rec.Source] = rec
	}

	if len(merged.Sources) == 0 {
		return merged
	}

	var sentimentSum float64
	hasMomentum := false
	for _, rec := range merged.Sources {
		merged.TotalMentions += max(rec.Mentions, 0)
		sentimentSum += clampSentiment(rec.Sentiment)

		if rec.MomentumRatio != nil && *rec.MomentumRatio > 0 {
			if !hasMomentum || *rec.MomentumRatio > merged.MaxMomentum {
				merged.MaxMomentum = *rec.MomentumRatio
			}
			hasMomentum = true
		}
	}

	merged.SourceCount = len(merged.Sources)
	merged.AvgSentiment = sentimentSum / float64(merged.SourceCount)

	return merged
}

func clampSentiment(v float64) float64 {
	if v < -100 {
		return -100
	}
	if v > 100 {
		return 100
	}
	return v
}
