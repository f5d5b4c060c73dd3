package contracts

// ScoreSet holds the four bounded scores. Each is an integer in [0,100].
type ScoreSet struct {
	Attention    int `json:"attention"`
	Momentum     int `json:"momentum"`
	Fundamentals int `json:"fundamentals"`
	Risk         int `json:"risk"`
}

// Classification is the categorical verdict for a ticker
type Classification string

const (
	ClassRunner Classification = "runner"
	ClassValue  Classification = "value"
	ClassBoth   Classification = "both"
	ClassAvoid  Classification = "avoid"
	ClassWatch  Classification = "watch"
)

// Valid reports whether c is a known classification
func (c Classification) Valid() bool {
	switch c {
	case ClassRunner, ClassValue, ClassBoth, ClassAvoid, ClassWatch:
		return true
	}
	return false
}

// AlertType is the kind of alert a classification raises; AlertNone means no alert
type AlertType string

const (
	AlertRunner      AlertType = "runner"
	AlertValue       AlertType = "value"
	AlertBoth        AlertType = "both"
	AlertPumpWarning AlertType = "pump_warning"
	AlertNone        AlertType = ""
)

// ClassificationResult is the verdict for one ticker/run
type ClassificationResult struct {
	Classification Classification `json:"classification"`
	AlertType      AlertType      `json:"alert_type,omitempty"`
	AlertTriggered bool           `json:"alert_triggered"`
	Confidence     float64        `json:"confidence"` // 0 ~ 1
	BullCase       string         `json:"bull_case,omitempty"`
	BearCase       string         `json:"bear_case,omitempty"`
	Catalysts      []string       `json:"catalysts,omitempty"`
	AIAugmented    bool           `json:"ai_augmented"`
}

// TargetMethod names one of the four target estimators
type TargetMethod string

const (
	MethodTechnical   TargetMethod = "technical"
	MethodFundamental TargetMethod = "fundamental"
	MethodAI          TargetMethod = "ai"
	MethodRisk        TargetMethod = "risk"
)

// TargetDetail is one estimator's output. Confidence is in (0,1].
type TargetDetail struct {
	Method     TargetMethod `json:"method"`
	Target     float64      `json:"target"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning,omitempty"`
}

// TargetPrices holds the four targets, their blend and the stop
type TargetPrices struct {
	Technical   float64        `json:"technical"`
	Fundamental float64        `json:"fundamental"`
	AI          float64        `json:"ai"`
	Risk        float64        `json:"risk"`
	Average     float64        `json:"average"`
	StopLoss    float64        `json:"stop_loss"`
	Details     []TargetDetail `json:"details"`
}

// UpsidePercent is the blended target's distance above price, in percent
func (t TargetPrices) UpsidePercent(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return (t.Average - price) / price * 100
}

// AITarget is the optional target supplied by the analytical collaborator
type AITarget struct {
	Target     float64 `json:"target"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// AIAnalysis is the analytical collaborator's full answer
type AIAnalysis struct {
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	BullCase       string         `json:"bull_case"`
	BearCase       string         `json:"bear_case"`
	Catalysts      []string       `json:"catalysts"`
	Target         *AITarget      `json:"target,omitempty"`
}

// Analysis is the immutable decision artifact for one ticker/run
type Analysis struct {
	Ticker         string                `json:"ticker"`
	Sentiment      MergedSentiment       `json:"sentiment"`
	Price          *PriceSnapshot        `json:"price"`
	Fundamentals   *FundamentalsSnapshot `json:"fundamentals,omitempty"`
	Scores         ScoreSet              `json:"scores"`
	Classification ClassificationResult  `json:"classification"`
	Targets        TargetPrices          `json:"targets"`
}
