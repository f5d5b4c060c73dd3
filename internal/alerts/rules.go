package alerts

import (
	"fmt"
	"strings"

	"github.com/wonny/tickerscope/internal/contracts"
)

// RuleError describes an invalid alert rule field
type RuleError struct {
	Field   string
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRule checks a rule before it is stored. Channel names are
// normalized to lower case in place.
func ValidateRule(rule *contracts.AlertRule) error {
	rule.Name = strings.TrimSpace(rule.Name)
	if rule.Name == "" {
		return &RuleError{Field: "name", Message: "required"}
	}

	switch rule.AlertType {
	case contracts.AlertNone, contracts.AlertRunner, contracts.AlertValue, contracts.AlertBoth, contracts.AlertPumpWarning:
	default:
		return &RuleError{Field: "alert_type", Message: fmt.Sprintf("unknown alert type %q", rule.AlertType)}
	}

	if len(rule.Channels) == 0 {
		return &RuleError{Field: "channels", Message: "at least one channel required"}
	}
	for i, ch := range rule.Channels {
		ch = strings.ToLower(strings.TrimSpace(ch))
		if ch == "" {
			return &RuleError{Field: "channels", Message: "empty channel name"}
		}
		rule.Channels[i] = ch
	}

	c := rule.Conditions
	for _, cl := range c.Classifications {
		if !cl.Valid() {
			return &RuleError{Field: "conditions.classification", Message: fmt.Sprintf("unknown classification %q", cl)}
		}
	}
	for name, v := range map[string]*int{
		"min_attention":    c.MinAttention,
		"min_momentum":     c.MinMomentum,
		"min_fundamentals": c.MinFundamentals,
		"max_risk":         c.MaxRisk,
		"min_risk":         c.MinRisk,
	} {
		if v != nil && (*v < 0 || *v > 100) {
			return &RuleError{Field: "conditions." + name, Message: "must be within 0-100"}
		}
	}
	if c.MinConfidence != nil && (*c.MinConfidence < 0 || *c.MinConfidence > 1) {
		return &RuleError{Field: "conditions.min_confidence", Message: "must be within 0-1"}
	}
	if c.MaxPrice != nil && *c.MaxPrice <= 0 {
		return &RuleError{Field: "conditions.max_price", Message: "must be positive"}
	}

	return nil
}
