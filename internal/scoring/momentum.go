package scoring

import (
	"math"

	"github.com/wonny/tickerscope/internal/contracts"
)

// Momentum measures recent price/volume strength (0~100).
// No snapshot means no evidence of momentum.
func Momentum(p *contracts.PriceSnapshot) int {
	if p == nil {
		return 0
	}

	dailyMove := math.Min(30, math.Abs(p.Change1dPercent)*2)
	volume := math.Min(30, (p.RelativeVolume-1)*10)

	return contracts.ClampScore(dailyMove + volume + trendComponent(p.Change30dPercent) + positionComponent(p))
}

func trendComponent(change30d float64) float64 {
	switch {
	case change30d > 50:
		return 20
	case change30d > 20:
		return 15
	case change30d > 0:
		return 10
	case change30d > -20:
		return 5
	default:
		return 0
	}
}

// positionComponent rewards distance below the 52-week high
func positionComponent(p *contracts.PriceSnapshot) float64 {
	if p.High52w <= 0 {
		return 5
	}

	fromHigh := (p.High52w - p.Price) / p.High52w * 100
	switch {
	case fromHigh > 50:
		return 20
	case fromHigh > 30:
		return 15
	case fromHigh > 15:
		return 10
	default:
		return 5
	}
}
