package scoring

import (
	"math"

	"github.com/wonny/tickerscope/internal/contracts"
)

const riskBaseline = 20

// Risk estimates pump-and-dump probability (0~100, higher = riskier).
// attention and fundamentals are the already computed scores.
func Risk(attention, fundamentals int, m contracts.MergedSentiment, p *contracts.PriceSnapshot, f *contracts.FundamentalsSnapshot) int {
	score := float64(riskBaseline)

	// hype without substance
	switch {
	case attention > 80 && fundamentals < 30:
		score += 25
	case attention > 60 && fundamentals < 40:
		score += 15
	}

	if m.SourceCount == 1 && attention > 50 {
		score += 15
	}

	var absChange float64
	if p != nil {
		absChange = math.Abs(p.Change1dPercent)

		switch {
		case p.RelativeVolume > 10 && fundamentals < 50:
			score += 20
		case p.RelativeVolume > 5 && fundamentals < 50:
			score += 10
		}

		if absChange > 30 && fundamentals < 50 {
			score += 15
		}
	}

	if f != nil {
		if f.MarketCap > 0 {
			if f.MarketCap < 10e6 && absChange > 20 {
				score += 20
			}
			if f.MarketCap < 5e6 {
				score += 10
			}
		}
		if f.IsOTC() {
			score += 10
		}
		if f.RecentFilings != nil && *f.RecentFilings == 0 {
			score += 5
		}
	}

	return contracts.ClampScore(score)
}
