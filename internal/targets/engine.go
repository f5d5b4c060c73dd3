package targets

import (
	"math"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/strategyconfig"
	"github.com/wonny/tickerscope/pkg/logger"
)

// MaxStopFraction: the stop is never looser than 10% below entry
const MaxStopFraction = 0.9

// Calculate runs the four estimators and blends them by confidence.
// ok=false when there is no usable price.
// ⭐ SSOT: 목표가/손절가 계산은 여기서만
func Calculate(p *contracts.PriceSnapshot, f *contracts.FundamentalsSnapshot, risk int, ai *contracts.AITarget, cfg strategyconfig.Targets) (contracts.TargetPrices, bool) {
	technical, ok := Technical(p)
	if !ok {
		return contracts.TargetPrices{}, false
	}

	fundamental, _ := Fundamental(p.Price, f, cfg)
	riskDetail, riskStop, _ := RiskBased(p.Price, risk)
	aiDetail := AI(ai, technical, fundamental, riskDetail)

	details := []contracts.TargetDetail{technical, fundamental, aiDetail, riskDetail}

	var weighted, weights float64
	for _, d := range details {
		weighted += d.Target * d.Confidence
		weights += d.Confidence
	}

	return contracts.TargetPrices{
		Technical:   technical.Target,
		Fundamental: fundamental.Target,
		AI:          aiDetail.Target,
		Risk:        riskDetail.Target,
		Average:     contracts.Round2(weighted / weights),
		StopLoss:    contracts.Floor2(math.Min(riskStop, p.Price*MaxStopFraction)),
		Details:     details,
	}, true
}

// Engine wraps Calculate with the strategy's sector table and debug logging
type Engine struct {
	cfg    strategyconfig.Targets
	logger *logger.Logger
}

// NewEngine creates a new target price engine
func NewEngine(cfg strategyconfig.Targets, log *logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: log.WithComponent("targets"),
	}
}

// Calculate computes targets for one ticker
func (e *Engine) Calculate(p *contracts.PriceSnapshot, f *contracts.FundamentalsSnapshot, risk int, ai *contracts.AITarget) (contracts.TargetPrices, bool) {
	t, ok := Calculate(p, f, risk, ai, e.cfg)
	if !ok {
		e.logger.Debug("No price, skipping targets")
		return t, false
	}

	e.logger.WithFields(map[string]interface{}{
		"ticker":      p.Ticker,
		"price":       p.Price,
		"technical":   t.Technical,
		"fundamental": t.Fundamental,
		"ai":          t.AI,
		"risk":        t.Risk,
		"average":     t.Average,
		"stop_loss":   t.StopLoss,
	}).Debug("Calculated targets")

	return t, true
}
