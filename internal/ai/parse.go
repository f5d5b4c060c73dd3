package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/wonny/tickerscope/internal/contracts"
)

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

type rawResponse struct {
	Classification   string   `json:"classification"`
	Confidence       float64  `json:"confidence"`
	BullCase         string   `json:"bull_case"`
	BearCase         string   `json:"bear_case"`
	Catalysts        []string `json:"catalysts"`
	TargetPrice      float64  `json:"target_price"`
	TargetReasoning  string   `json:"target_reasoning"`
	TargetConfidence float64  `json:"target_confidence"`
}

// ParseResponse decodes the model's JSON. Any malformed answer is
// reported as ErrAnalyticalParse so the caller can fall back.
func ParseResponse(text string) (*contracts.AIAnalysis, error) {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); len(m) > 1 {
		text = m[1]
	}
	// 앞뒤 잡음 제거
	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && j > i {
		text = text[i : j+1]
	}
	if text == "" {
		return nil, fmt.Errorf("empty response: %w", contracts.ErrAnalyticalParse)
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode response: %v: %w", err, contracts.ErrAnalyticalParse)
	}

	class := contracts.Classification(strings.ToLower(strings.TrimSpace(raw.Classification)))
	if !class.Valid() {
		return nil, fmt.Errorf("unknown classification %q: %w", raw.Classification, contracts.ErrAnalyticalParse)
	}

	out := &contracts.AIAnalysis{
		Classification: class,
		Confidence:     raw.Confidence,
		BullCase:       strings.TrimSpace(raw.BullCase),
		BearCase:       strings.TrimSpace(raw.BearCase),
		Catalysts:      raw.Catalysts,
	}
	if raw.TargetPrice > 0 {
		out.Target = &contracts.AITarget{
			Target:     raw.TargetPrice,
			Reasoning:  strings.TrimSpace(raw.TargetReasoning),
			Confidence: raw.TargetConfidence,
		}
	}
	return out, nil
}
