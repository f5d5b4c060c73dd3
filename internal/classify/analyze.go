package classify

import (
	"context"
	"fmt"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/strategyconfig"
	"github.com/wonny/tickerscope/pkg/logger"
)

// FallbackConfidence is used whenever the analyst is absent or fails
const FallbackConfidence = 0.5

// Classifier combines the deterministic classification with an optional analyst
type Classifier struct {
	cfg     *strategyconfig.Config
	analyst contracts.Analyst // nil = rules only
	logger  *logger.Logger
}

// NewClassifier creates a classifier. analyst may be nil.
func NewClassifier(cfg *strategyconfig.Config, analyst contracts.Analyst, log *logger.Logger) *Classifier {
	if cfg == nil {
		cfg = strategyconfig.Default()
	}
	return &Classifier{
		cfg:     cfg,
		analyst: analyst,
		logger:  log.WithComponent("classifier"),
	}
}

// Classify runs the rule state machine only
func (c *Classifier) Classify(s contracts.ScoreSet) contracts.ClassificationResult {
	return Classify(s, c.cfg)
}

// Analyze classifies, then lets the analyst refine the verdict.
// Always returns a classification; the AI target is nil when unavailable.
// A pump warning from the rules is never overridden.
func (c *Classifier) Analyze(ctx context.Context, in contracts.AnalystInput) (contracts.ClassificationResult, *contracts.AITarget) {
	preliminary := Classify(in.Scores, c.cfg)
	in.Preliminary = preliminary

	fallback := preliminary
	fallback.Confidence = FallbackConfidence

	if c.analyst == nil {
		return fallback, nil
	}

	log := c.logger.WithTicker(in.Ticker)

	analysis, err := c.analyst.Analyze(ctx, in)
	if err == nil && analysis == nil {
		err = fmt.Errorf("empty analysis: %w", contracts.ErrAnalyticalParse)
	}
	if err == nil && !analysis.Classification.Valid() {
		err = fmt.Errorf("unknown classification %q: %w", analysis.Classification, contracts.ErrAnalyticalParse)
	}
	if err != nil {
		log.WithError(err).Warn("Analyst failed, using preliminary classification")
		return fallback, nil
	}

	class := analysis.Classification
	if preliminary.Classification == contracts.ClassAvoid {
		class = contracts.ClassAvoid
	}

	alertType := AlertTypeFor(class)
	result := contracts.ClassificationResult{
		Classification: class,
		AlertType:      alertType,
		AlertTriggered: alertType != contracts.AlertNone,
		Confidence:     clampUnit(analysis.Confidence),
		BullCase:       analysis.BullCase,
		BearCase:       analysis.BearCase,
		Catalysts:      analysis.Catalysts,
		AIAugmented:    true,
	}

	if class != preliminary.Classification {
		log.WithFields(map[string]interface{}{
			"preliminary": preliminary.Classification,
			"final":       class,
			"confidence":  result.Confidence,
		}).Info("Analyst changed classification")
	}

	return result, validTarget(analysis.Target)
}

func validTarget(t *contracts.AITarget) *contracts.AITarget {
	if t == nil || t.Target <= 0 {
		return nil
	}
	out := *t
	out.Confidence = clampUnit(out.Confidence)
	if out.Confidence == 0 {
		out.Confidence = FallbackConfidence
	}
	return &out
}

func clampUnit(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
