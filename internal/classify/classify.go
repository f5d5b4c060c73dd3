package classify

import (
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/strategyconfig"
)

// Classify maps a ScoreSet to exactly one outcome. Pure and total.
// ⭐ SSOT: 분류 우선순위는 여기서만 (pump_warning > both > runner > value > watch)
func Classify(s contracts.ScoreSet, cfg *strategyconfig.Config) contracts.ClassificationResult {
	if cfg == nil {
		cfg = strategyconfig.Default()
	}

	var class contracts.Classification
	switch {
	case s.Risk >= cfg.PumpWarning.MinRisk:
		class = contracts.ClassAvoid
	case s.Attention >= 60 && s.Momentum >= 60 && s.Fundamentals >= 60 && s.Risk < 50:
		class = contracts.ClassBoth
	case s.Attention >= cfg.Runner.MinAttention &&
		s.Momentum >= cfg.Runner.MinMomentum &&
		s.Risk <= cfg.Runner.MaxRisk:
		class = contracts.ClassRunner
	case s.Fundamentals >= cfg.Value.MinFundamentals &&
		s.Momentum >= cfg.Value.MinMomentum &&
		s.Momentum <= cfg.Value.MaxMomentum &&
		s.Risk <= cfg.Value.MaxRisk:
		class = contracts.ClassValue
	default:
		class = contracts.ClassWatch
	}

	alertType := AlertTypeFor(class)
	return contracts.ClassificationResult{
		Classification: class,
		AlertType:      alertType,
		AlertTriggered: alertType != contracts.AlertNone,
	}
}

// AlertTypeFor returns the alert a classification raises
func AlertTypeFor(c contracts.Classification) contracts.AlertType {
	switch c {
	case contracts.ClassAvoid:
		return contracts.AlertPumpWarning
	case contracts.ClassBoth:
		return contracts.AlertBoth
	case contracts.ClassRunner:
		return contracts.AlertRunner
	case contracts.ClassValue:
		return contracts.AlertValue
	default:
		return contracts.AlertNone
	}
}
