package ai

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/wonny/tickerscope/internal/contracts"
)

const systemPrompt = `You are a small-cap equity analyst reviewing a quantitative screen.
Classify the ticker as one of: runner (short-term momentum play), value (undervalued on fundamentals),
both, avoid (pump risk or broken story), watch (nothing actionable yet).
Be skeptical of social-media hype. Respond with JSON only.`

// responseSchema forces the structured answer
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"classification": {
			Type: genai.TypeString,
			Enum: []string{"runner", "value", "both", "avoid", "watch"},
		},
		"confidence": {Type: genai.TypeNumber, Description: "0.0 to 1.0"},
		"bull_case":  {Type: genai.TypeString},
		"bear_case":  {Type: genai.TypeString},
		"catalysts": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"target_price":      {Type: genai.TypeNumber, Description: "price target in USD, 0 if none"},
		"target_reasoning":  {Type: genai.TypeString},
		"target_confidence": {Type: genai.TypeNumber, Description: "0.0 to 1.0"},
	},
	Required: []string{"classification", "confidence", "bull_case", "bear_case"},
}

// BuildPrompt renders the ticker's data for the model
func BuildPrompt(in contracts.AnalystInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ticker: %s\n\n", in.Ticker)

	b.WriteString("## Social sentiment\n")
	fmt.Fprintf(&b, "- total mentions: %d across %d sources\n", in.Sentiment.TotalMentions, in.Sentiment.SourceCount)
	fmt.Fprintf(&b, "- average sentiment: %.1f (-100..100)\n", in.Sentiment.AvgSentiment)
	fmt.Fprintf(&b, "- mention momentum: %.2fx vs 24h ago\n", in.Sentiment.MaxMomentum)
	if rank, ok := in.Sentiment.Rank(); ok {
		fmt.Fprintf(&b, "- mentions rank: #%d\n", rank)
	}
	sources := make([]string, 0, len(in.Sentiment.Sources))
	for s := range in.Sentiment.Sources {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)
	if len(sources) > 0 {
		fmt.Fprintf(&b, "- sources: %s\n", strings.Join(sources, ", "))
	}

	b.WriteString("\n## Price\n")
	if p := in.Price; p != nil {
		fmt.Fprintf(&b, "- price: $%.2f\n", p.Price)
		fmt.Fprintf(&b, "- change 1d/5d/30d: %.2f%% / %.2f%% / %.2f%%\n", p.Change1dPercent, p.Change5dPercent, p.Change30dPercent)
		fmt.Fprintf(&b, "- relative volume: %.2fx\n", p.RelativeVolume)
		fmt.Fprintf(&b, "- 52w range: $%.2f - $%.2f\n", p.Low52w, p.High52w)
	} else {
		b.WriteString("- unavailable\n")
	}

	b.WriteString("\n## Fundamentals\n")
	if f := in.Fundamentals; f != nil {
		fmt.Fprintf(&b, "- name: %s (%s / %s, %s)\n", f.Name, f.Sector, f.Industry, f.Exchange)
		if f.MarketCap > 0 {
			fmt.Fprintf(&b, "- market cap: $%.0fM\n", f.MarketCap/1e6)
		}
		writeOpt(&b, "P/E", f.PERatio, "")
		writeOpt(&b, "P/S", f.PSRatio, "")
		writeOpt(&b, "P/B", f.PBRatio, "")
		writeOpt(&b, "EPS growth", f.EPSGrowth, "%")
		writeOpt(&b, "revenue growth", f.RevenueGrowth, "%")
		writeOpt(&b, "gross margin", f.GrossMargin, "%")
		writeOpt(&b, "debt/equity", f.DebtEquity, "")
		if f.RecentFilings != nil {
			fmt.Fprintf(&b, "- SEC filings last 90d: %d\n", *f.RecentFilings)
		}
	} else {
		b.WriteString("- unavailable\n")
	}

	b.WriteString("\n## Scores (0-100)\n")
	fmt.Fprintf(&b, "- attention %d, momentum %d, fundamentals %d, risk %d\n",
		in.Scores.Attention, in.Scores.Momentum, in.Scores.Fundamentals, in.Scores.Risk)
	fmt.Fprintf(&b, "- rule-based classification: %s\n", in.Preliminary.Classification)

	b.WriteString(`
Return JSON with keys classification, confidence, bull_case, bear_case, catalysts,
target_price, target_reasoning, target_confidence.`)

	return b.String()
}

func writeOpt(b *strings.Builder, label string, v *float64, unit string) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "- %s: %.2f%s\n", label, *v, unit)
}
