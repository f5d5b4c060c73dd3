package contracts

import "time"

// AlertConditions is a set of optional predicates. A nil field imposes no
// constraint; a rule matches when every non-nil predicate holds.
type AlertConditions struct {
	Classifications []Classification `json:"classification,omitempty"` // classification ∈ set (empty = any)
	MinAttention    *int             `json:"min_attention,omitempty"`  // attention >= v
	MinMomentum     *int             `json:"min_momentum,omitempty"`   // momentum >= v
	MinFundamentals *int             `json:"min_fundamentals,omitempty"`
	MaxRisk         *int             `json:"max_risk,omitempty"`       // risk <= v
	MinRisk         *int             `json:"min_risk,omitempty"`       // risk >= v
	MinConfidence   *float64         `json:"min_confidence,omitempty"` // confidence >= v
	MinUpside       *float64         `json:"min_upside,omitempty"`     // (average-price)/price*100 >= v
	MaxPrice        *float64         `json:"max_price,omitempty"`      // price <= v
}

// IsEmpty reports whether no predicate is set (matches everything)
func (c AlertConditions) IsEmpty() bool {
	return len(c.Classifications) == 0 &&
		c.MinAttention == nil && c.MinMomentum == nil && c.MinFundamentals == nil &&
		c.MaxRisk == nil && c.MinRisk == nil && c.MinConfidence == nil &&
		c.MinUpside == nil && c.MaxPrice == nil
}

// AlertRule is a configurable alert. Read-only to the decision engine.
type AlertRule struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Enabled    bool            `json:"enabled"`
	AlertType  AlertType       `json:"alert_type"`
	Conditions AlertConditions `json:"conditions"`
	Channels   []string        `json:"channels"` // non-empty, dispatch order
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AlertPayload is what a notification channel renders
type AlertPayload struct {
	Ticker         string         `json:"ticker"`
	AlertType      AlertType      `json:"alert_type"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Scores         ScoreSet       `json:"scores"`
	Price          float64        `json:"price"`
	Target         float64        `json:"target"`
	StopLoss       float64        `json:"stop_loss"`
	BullCase       string         `json:"bull_case,omitempty"`
	BearCase       string         `json:"bear_case,omitempty"`
	RuleName       string         `json:"rule_name,omitempty"`
	Message        string         `json:"message"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// AlertEvent is the append-only record of a confirmed dispatch
type AlertEvent struct {
	ID             int64          `json:"id"`
	ScanResultID   int64          `json:"scan_result_id"`
	RuleID         *int64         `json:"rule_id,omitempty"`
	Ticker         string         `json:"ticker"`
	AlertType      AlertType      `json:"alert_type"`
	Scores         ScoreSet       `json:"scores"`
	Classification Classification `json:"classification"`
	Message        string         `json:"message"`
	SentTo         []string       `json:"sent_to"` // channels that confirmed success
	CreatedAt      time.Time      `json:"created_at"`
}
