package scoring

import (
	"math"

	"github.com/wonny/tickerscope/internal/contracts"
)

// Attention measures crowd buzz intensity (0~100)
func Attention(m contracts.MergedSentiment) int {
	mentions := math.Min(40, float64(m.TotalMentions)/200*40)
	sentiment := (m.AvgSentiment + 100) / 200 * 25

	rank := 0.0
	if r, ok := m.Rank(); ok {
		rank = rankComponent(r)
	}

	sourceBonus := math.Min(5, float64(m.SourceCount)*2)

	return contracts.ClampScore(mentions + sentiment + rank + sourceBonus + momentumBonus(m.MaxMomentum))
}

func rankComponent(rank int) float64 {
	switch {
	case rank <= 0:
		return 0
	case rank <= 10:
		return 20
	case rank <= 25:
		return 15
	case rank <= 50:
		return 10
	case rank <= 100:
		return 5
	default:
		return 0
	}
}

func momentumBonus(ratio float64) float64 {
	switch {
	case ratio > 3:
		return 10
	case ratio > 2:
		return 5
	case ratio > 1.5:
		return 2
	default:
		return 0
	}
}
