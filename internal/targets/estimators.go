package targets

import (
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/strategyconfig"
)

// Technical targets from the price's position in the 52-week range,
// nudged by the 5-day move. ok=false when there is no usable price.
func Technical(p *contracts.PriceSnapshot) (contracts.TargetDetail, bool) {
	if p == nil || p.Price <= 0 {
		return contracts.TargetDetail{}, false
	}

	var target, confidence float64
	var reasoning string

	spread := p.High52w - p.Low52w
	position := 1.0
	if spread > 0 {
		position = (p.Price - p.Low52w) / spread
	}

	switch {
	case position < 0.3:
		target, confidence = p.Low52w+spread*0.5, 0.7
		reasoning = "mid-range reversion"
	case position < 0.5:
		target, confidence = p.Low52w+spread*0.75, 0.65
		reasoning = "resistance at 75% of range"
	case position < 0.7:
		target, confidence = p.High52w*0.95, 0.5
		reasoning = "retest of 52-week high"
	default:
		target, confidence = p.Price*1.10, 0.4
		reasoning = "near highs, 10% extension"
	}

	switch {
	case p.Change5dPercent > 10:
		target *= 1.05
	case p.Change5dPercent < -10:
		target *= 0.95
	}

	return contracts.TargetDetail{
		Method:     contracts.MethodTechnical,
		Target:     contracts.Round2(target),
		Confidence: confidence,
		Reasoning:  reasoning,
	}, true
}

// Fundamental targets a blend of fair value and price.
// P/E path first, then P/S, else a flat 15%.
func Fundamental(price float64, f *contracts.FundamentalsSnapshot, cfg strategyconfig.Targets) (contracts.TargetDetail, bool) {
	if price <= 0 {
		return contracts.TargetDetail{}, false
	}

	detail := contracts.TargetDetail{Method: contracts.MethodFundamental}

	switch {
	case f != nil && f.PERatio != nil && *f.PERatio > 0:
		eps := price / *f.PERatio
		fair := eps * cfg.SectorAveragePE(f.Sector)

		if g := f.RevenueGrowth; g != nil {
			switch {
			case *g > 20:
				fair *= 1.2
			case *g < 0:
				fair *= 0.85
			}
		}

		detail.Target = 0.7*fair + 0.3*price
		detail.Confidence = 0.6
		detail.Reasoning = "sector P/E fair value"

	case f != nil && f.PSRatio != nil && *f.PSRatio > 0:
		// 주당매출 × 2.5배
		fair := price / *f.PSRatio * 2.5
		detail.Target = 0.6*fair + 0.4*price
		detail.Confidence = 0.4
		detail.Reasoning = "2.5x sales fair value"

	default:
		detail.Target = price * 1.15
		detail.Confidence = 0.3
		detail.Reasoning = "no valuation ratios, flat 15%"
	}

	detail.Target = contracts.Round2(detail.Target)
	return detail, true
}

// riskTier is the target/stop pair chosen by risk score
type riskTier struct {
	targetPct float64
	stopPct   float64
}

func tierFor(risk int) riskTier {
	switch {
	case risk < 30:
		return riskTier{0.25, 0.08}
	case risk < 50:
		return riskTier{0.20, 0.10}
	case risk < 70:
		return riskTier{0.15, 0.12}
	default:
		return riskTier{0.10, 0.15}
	}
}

// RiskBased returns the risk-tiered target and its stop
func RiskBased(price float64, risk int) (contracts.TargetDetail, float64, bool) {
	if price <= 0 {
		return contracts.TargetDetail{}, 0, false
	}

	tier := tierFor(risk)
	return contracts.TargetDetail{
		Method:     contracts.MethodRisk,
		Target:     contracts.Round2(price * (1 + tier.targetPct)),
		Confidence: 0.7,
		Reasoning:  "risk-tiered reward",
	}, price * (1 - tier.stopPct), true
}

// AI uses the analyst's target when present, else the plain mean of the others
func AI(supplied *contracts.AITarget, others ...contracts.TargetDetail) contracts.TargetDetail {
	if supplied != nil && supplied.Target > 0 {
		confidence := supplied.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.5
		}
		return contracts.TargetDetail{
			Method:     contracts.MethodAI,
			Target:     contracts.Round2(supplied.Target),
			Confidence: confidence,
			Reasoning:  supplied.Reasoning,
		}
	}

	var sum float64
	for _, d := range others {
		sum += d.Target
	}
	mean := 0.0
	if len(others) > 0 {
		mean = sum / float64(len(others))
	}

	return contracts.TargetDetail{
		Method:     contracts.MethodAI,
		Target:     contracts.Round2(mean),
		Confidence: 0.5,
		Reasoning:  "no analyst target, mean of other methods",
	}
}
