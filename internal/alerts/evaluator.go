package alerts

import (
	"context"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

// RuleSource loads configured rules
type RuleSource interface {
	ListRules(ctx context.Context, enabledOnly bool) ([]contracts.AlertRule, error)
}

// Evaluator loads rules once per scan run and applies the selected strategy
// to every analysis.
// ⭐ SSOT: 알림 판정/발송/기록은 여기서만
type Evaluator struct {
	dispatcher *Dispatcher
	strategy   Strategy
	logger     *logger.Logger
}

// NewEvaluator creates an evaluator with an explicit strategy
func NewEvaluator(dispatcher *Dispatcher, strategy Strategy, log *logger.Logger) *Evaluator {
	return &Evaluator{
		dispatcher: dispatcher,
		strategy:   strategy,
		logger:     log.WithComponent("alerts"),
	}
}

// LoadEvaluator reads enabled rules and selects the strategy.
// A rule source failure degrades to the default strategy.
func LoadEvaluator(ctx context.Context, rules RuleSource, dispatcher *Dispatcher, log *logger.Logger) *Evaluator {
	var loaded []contracts.AlertRule
	if rules != nil {
		var err error
		loaded, err = rules.ListRules(ctx, true)
		if err != nil {
			log.WithError(err).Warn("Failed to load alert rules, using default evaluation")
			loaded = nil
		}
	}

	strategy := SelectStrategy(loaded)
	log.WithFields(map[string]interface{}{
		"strategy": strategy.Name(),
		"rules":    len(loaded),
	}).Info("Alert strategy selected")

	return NewEvaluator(dispatcher, strategy, log)
}

// Strategy returns the active strategy
func (e *Evaluator) Strategy() Strategy {
	return e.strategy
}

// Evaluate returns the number of alerts delivered for one analysis
func (e *Evaluator) Evaluate(ctx context.Context, in Input) int {
	return e.strategy.Evaluate(ctx, e.dispatcher, in)
}
