package alerts

import "github.com/wonny/tickerscope/internal/contracts"

// predicate is one optional condition; present=false means "no constraint"
type predicate struct {
	name    string
	present bool
	holds   func() bool
}

// Matches reports whether every present predicate holds for the analysis.
// Empty conditions match everything.
func Matches(c contracts.AlertConditions, a contracts.Analysis) bool {
	_, ok := firstFailure(c, a)
	return ok
}

// firstFailure returns the name of the first failing predicate
func firstFailure(c contracts.AlertConditions, a contracts.Analysis) (string, bool) {
	s := a.Scores
	price := 0.0
	if a.Price != nil {
		price = a.Price.Price
	}

	predicates := []predicate{
		{"classification", len(c.Classifications) > 0, func() bool {
			for _, cl := range c.Classifications {
				if cl == a.Classification.Classification {
					return true
				}
			}
			return false
		}},
		{"min_attention", c.MinAttention != nil, func() bool { return s.Attention >= *c.MinAttention }},
		{"min_momentum", c.MinMomentum != nil, func() bool { return s.Momentum >= *c.MinMomentum }},
		{"min_fundamentals", c.MinFundamentals != nil, func() bool { return s.Fundamentals >= *c.MinFundamentals }},
		{"max_risk", c.MaxRisk != nil, func() bool { return s.Risk <= *c.MaxRisk }},
		{"min_risk", c.MinRisk != nil, func() bool { return s.Risk >= *c.MinRisk }},
		{"min_confidence", c.MinConfidence != nil, func() bool {
			return a.Classification.Confidence >= *c.MinConfidence
		}},
		// 가격 없음 → 가격 기반 조건은 불충족
		{"min_upside", c.MinUpside != nil, func() bool {
			return price > 0 && a.Targets.UpsidePercent(price) >= *c.MinUpside
		}},
		{"max_price", c.MaxPrice != nil, func() bool { return price > 0 && price <= *c.MaxPrice }},
	}

	for _, p := range predicates {
		if p.present && !p.holds() {
			return p.name, false
		}
	}
	return "", true
}
