package alerts

import (
	"context"

	"github.com/wonny/tickerscope/internal/contracts"
)

// DefaultChannels receive alerts when no rules are configured
var DefaultChannels = []string{"discord", "slack"}

// Input is one ticker's decision plus the persisted row it belongs to
type Input struct {
	ScanResultID int64
	Analysis     contracts.Analysis
}

// Strategy decides which alerts an analysis raises and dispatches them.
// Evaluate returns the number of alerts delivered to at least one channel.
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, d *Dispatcher, in Input) int
}

// RuleBasedEvaluation matches every enabled rule
type RuleBasedEvaluation struct {
	Rules []contracts.AlertRule
}

// Name implements Strategy
func (RuleBasedEvaluation) Name() string { return "rules" }

// Evaluate implements Strategy
func (s RuleBasedEvaluation) Evaluate(ctx context.Context, d *Dispatcher, in Input) int {
	count := 0
	for _, rule := range s.Rules {
		if !rule.Enabled {
			continue
		}
		if failed, ok := firstFailure(rule.Conditions, in.Analysis); !ok {
			d.logger.WithFields(map[string]interface{}{
				"ticker": in.Analysis.Ticker,
				"rule":   rule.Name,
				"failed": failed,
			}).Debug("Rule did not match")
			continue
		}

		alertType := rule.AlertType
		if alertType == contracts.AlertNone {
			alertType = in.Analysis.Classification.AlertType
		}
		if alertType == contracts.AlertNone {
			// 규칙과 분류 모두 알림 유형이 없음 (watch 등)
			d.logger.WithFields(map[string]interface{}{
				"ticker": in.Analysis.Ticker,
				"rule":   rule.Name,
			}).Debug("Rule matched without alert type, skipping")
			continue
		}

		ruleID := rule.ID
		if d.dispatch(ctx, in, alertType, rule.Name, &ruleID, rule.Channels) {
			count++
		}
	}
	return count
}

// DefaultEvaluation uses the classifier's own alert decision
type DefaultEvaluation struct {
	Channels []string
}

// Name implements Strategy
func (DefaultEvaluation) Name() string { return "default" }

// Evaluate implements Strategy
func (s DefaultEvaluation) Evaluate(ctx context.Context, d *Dispatcher, in Input) int {
	cls := in.Analysis.Classification
	if !cls.AlertTriggered || cls.AlertType == contracts.AlertNone {
		return 0
	}

	channels := s.Channels
	if len(channels) == 0 {
		channels = DefaultChannels
	}

	if d.dispatch(ctx, in, cls.AlertType, "", nil, channels) {
		return 1
	}
	return 0
}

// SelectStrategy picks rule-based evaluation when any rule exists, else the default
func SelectStrategy(rules []contracts.AlertRule) Strategy {
	if len(rules) == 0 {
		return DefaultEvaluation{Channels: DefaultChannels}
	}
	return RuleBasedEvaluation{Rules: rules}
}
