package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

// EventStore appends alert events
type EventStore interface {
	SaveAlertEvent(ctx context.Context, event *contracts.AlertEvent) (int64, error)
}

// Dispatcher sends payloads to channels and records confirmed deliveries
type Dispatcher struct {
	notifiers map[string]contracts.Notifier
	store     EventStore // nil = do not persist (dry run)
	logger    *logger.Logger
	now       func() time.Time
}

// NewDispatcher creates a dispatcher over the given notifiers
func NewDispatcher(notifiers []contracts.Notifier, store EventStore, log *logger.Logger) *Dispatcher {
	byName := make(map[string]contracts.Notifier, len(notifiers))
	for _, n := range notifiers {
		byName[n.Channel()] = n
	}
	return &Dispatcher{
		notifiers: byName,
		store:     store,
		logger:    log.WithComponent("alerts"),
		now:       time.Now,
	}
}

// dispatch delivers once per channel in listed order, no retries.
// Returns true when at least one channel confirmed.
func (d *Dispatcher) dispatch(ctx context.Context, in Input, alertType contracts.AlertType, ruleName string, ruleID *int64, channels []string) bool {
	payload := BuildPayload(in.Analysis, alertType, ruleName, d.now())
	log := d.logger.WithTicker(in.Analysis.Ticker)

	var sentTo []string
	seen := make(map[string]bool, len(channels))
	for _, ch := range channels {
		if seen[ch] {
			continue
		}
		seen[ch] = true

		n, ok := d.notifiers[ch]
		if !ok {
			log.WithField("channel", ch).Warn("Channel not configured, skipping")
			continue
		}
		if n.Send(ctx, payload) {
			sentTo = append(sentTo, ch)
		} else {
			log.WithField("channel", ch).Warn("Channel did not confirm delivery")
		}
	}

	if len(sentTo) == 0 {
		return false
	}

	if d.store != nil {
		event := &contracts.AlertEvent{
			ScanResultID:   in.ScanResultID,
			RuleID:         ruleID,
			Ticker:         in.Analysis.Ticker,
			AlertType:      alertType,
			Scores:         in.Analysis.Scores,
			Classification: in.Analysis.Classification.Classification,
			Message:        payload.Message,
			SentTo:         sentTo,
			CreatedAt:      payload.GeneratedAt,
		}
		if _, err := d.store.SaveAlertEvent(ctx, event); err != nil {
			// 전송은 완료됨: 기록 실패는 로그만
			log.WithError(fmt.Errorf("%w: %v", contracts.ErrPersistence, err)).Error("Failed to record alert event")
		}
	}

	log.WithFields(map[string]interface{}{
		"alert_type": alertType,
		"rule":       ruleName,
		"sent_to":    strings.Join(sentTo, ","),
	}).Info("Alert delivered")

	return true
}

// BuildPayload renders the notification payload for an analysis
func BuildPayload(a contracts.Analysis, alertType contracts.AlertType, ruleName string, at time.Time) contracts.AlertPayload {
	price := 0.0
	if a.Price != nil {
		price = a.Price.Price
	}

	p := contracts.AlertPayload{
		Ticker:         a.Ticker,
		AlertType:      alertType,
		Classification: a.Classification.Classification,
		Confidence:     a.Classification.Confidence,
		Scores:         a.Scores,
		Price:          price,
		Target:         a.Targets.Average,
		StopLoss:       a.Targets.StopLoss,
		BullCase:       a.Classification.BullCase,
		BearCase:       a.Classification.BearCase,
		RuleName:       ruleName,
		GeneratedAt:    at,
	}
	p.Message = FormatMessage(p)
	return p
}

// FormatMessage is the one-line plain text summary every channel can fall back on
func FormatMessage(p contracts.AlertPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s [%s]", Headline(p.AlertType), p.Ticker, p.Classification)
	if p.Price > 0 {
		fmt.Fprintf(&b, " $%.2f", p.Price)
		if p.Target > 0 {
			fmt.Fprintf(&b, " -> $%.2f (%+.1f%%)", p.Target, (p.Target-p.Price)/p.Price*100)
		}
		if p.StopLoss > 0 {
			fmt.Fprintf(&b, " stop $%.2f", p.StopLoss)
		}
	}
	fmt.Fprintf(&b, " | A%d M%d F%d R%d",
		p.Scores.Attention, p.Scores.Momentum, p.Scores.Fundamentals, p.Scores.Risk)
	return b.String()
}

// Headline is the human label for an alert type
func Headline(t contracts.AlertType) string {
	switch t {
	case contracts.AlertRunner:
		return "RUNNER"
	case contracts.AlertValue:
		return "VALUE"
	case contracts.AlertBoth:
		return "RUNNER+VALUE"
	case contracts.AlertPumpWarning:
		return "PUMP WARNING"
	default:
		return "ALERT"
	}
}
