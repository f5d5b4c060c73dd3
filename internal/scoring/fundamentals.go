package scoring

import "github.com/wonny/tickerscope/internal/contracts"

const fundamentalsBaseline = 50

// Fundamentals measures financial health around a neutral 50.
// Every tier is skipped when its field is not reported.
func Fundamentals(f *contracts.FundamentalsSnapshot) int {
	if f == nil {
		return fundamentalsBaseline
	}

	score := float64(fundamentalsBaseline)

	if f.MarketCap > 0 {
		switch {
		case f.MarketCap >= 500e6:
			score += 15
		case f.MarketCap >= 100e6:
			score += 10
		case f.MarketCap >= 50e6:
			score += 5
		case f.MarketCap < 10e6:
			score -= 15
		}
	}

	if pe := f.PERatio; pe != nil {
		switch {
		case *pe > 0 && *pe < 15:
			score += 10
		case *pe > 0 && *pe < 30:
			score += 5
		case *pe < 0:
			score -= 5
		case *pe > 100:
			score -= 5
		}
	}

	if g := f.RevenueGrowth; g != nil {
		switch {
		case *g > 50:
			score += 15
		case *g > 20:
			score += 10
		case *g > 0:
			score += 5
		case *g < -20:
			score -= 10
		}
	}

	// 퍼센트 단위 (달러 금액 아님)
	if gm := f.GrossMargin; gm != nil {
		switch {
		case *gm > 50:
			score += 10
		case *gm > 30:
			score += 5
		case *gm < 10:
			score -= 5
		}
	}

	if om := f.OperatingMargin; om != nil {
		switch {
		case *om > 20:
			score += 10
		case *om > 0:
			score += 5
		default:
			score -= 5
		}
	}

	if de := f.DebtEquity; de != nil {
		switch {
		case *de < 0.3:
			score += 5
		case *de > 2:
			score -= 10
		case *de > 1:
			score -= 5
		}
	}

	if f.IsMajorExchange() {
		score += 5
	}

	return contracts.ClampScore(score)
}
