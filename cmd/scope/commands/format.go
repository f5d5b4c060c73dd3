package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/scan"
	"github.com/wonny/tickerscope/internal/scheduler"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// printHeader prints a boxed command title
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

// printSummary prints a scan run summary
func printSummary(w io.Writer, s scan.Summary) {
	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  Run ID    : %s\n", s.RunID)
	fmt.Fprintf(w, "  Tickers   : %d (analyzed %d, filtered %d, failed %d)\n",
		s.Tickers, s.Analyzed, s.Filtered, s.Failed)
	fmt.Fprintf(w, "  Alerts    : %d\n", s.Alerts)

	classes := make([]string, 0, len(s.ByClass))
	for c := range s.ByClass {
		classes = append(classes, string(c))
	}
	sort.Strings(classes)
	for _, c := range classes {
		fmt.Fprintf(w, "  %-10s: %d\n", c, s.ByClass[contracts.Classification(c)])
	}

	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "✅ Scan completed in %.2fs\n", s.Duration.Seconds())
}

// printAnalysis prints one decision in a readable block
func printAnalysis(w io.Writer, a contracts.Analysis) {
	c := a.Classification
	fmt.Fprintf(w, "  Ticker    : %s\n", a.Ticker)
	fmt.Fprintf(w, "  Class     : %s (confidence %.2f", c.Classification, c.Confidence)
	if c.AIAugmented {
		fmt.Fprint(w, ", ai")
	}
	fmt.Fprintln(w, ")")
	if c.AlertTriggered {
		fmt.Fprintf(w, "  Alert     : %s\n", c.AlertType)
	}

	s := a.Scores
	fmt.Fprintf(w, "  Scores    : attention %d | momentum %d | fundamentals %d | risk %d\n",
		s.Attention, s.Momentum, s.Fundamentals, s.Risk)
	fmt.Fprintf(w, "  Sentiment : %d mentions, avg %.1f, %d sources\n",
		a.Sentiment.TotalMentions, a.Sentiment.AvgSentiment, a.Sentiment.SourceCount)

	if a.Price != nil {
		fmt.Fprintf(w, "  Price     : $%.2f (1d %+.2f%%, 5d %+.2f%%, rvol %.2f)\n",
			a.Price.Price, a.Price.Change1dPercent, a.Price.Change5dPercent, a.Price.RelativeVolume)
		t := a.Targets
		fmt.Fprintf(w, "  Target    : $%.2f (%+.1f%%)  stop $%.2f\n",
			t.Average, t.UpsidePercent(a.Price.Price), t.StopLoss)
		for _, d := range t.Details {
			fmt.Fprintf(w, "    - %-11s $%.2f (conf %.2f)\n", d.Method, d.Target, d.Confidence)
		}
	} else {
		fmt.Fprintln(w, "  Price     : n/a")
	}

	if a.Fundamentals != nil {
		f := a.Fundamentals
		fmt.Fprintf(w, "  Company   : %s | %s | %s | mcap %.0f\n", f.Name, f.Sector, f.Exchange, f.MarketCap)
	}

	if c.BullCase != "" {
		fmt.Fprintf(w, "  Bull      : %s\n", c.BullCase)
	}
	if c.BearCase != "" {
		fmt.Fprintf(w, "  Bear      : %s\n", c.BearCase)
	}
	if len(c.Catalysts) > 0 {
		fmt.Fprintf(w, "  Catalysts : %s\n", strings.Join(c.Catalysts, ", "))
	}
}

// printAccuracy prints the per-classification accuracy table
func printAccuracy(w io.Writer, reports []contracts.AccuracyReport) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "⚠️  No graded picks in window")
		return
	}
	fmt.Fprintf(w, "  %-8s %7s %8s %8s %8s %8s %8s %8s\n",
		"class", "samples", "avg1d", "avg3d", "avg5d", "win5d", "target", "stop")
	for _, r := range reports {
		fmt.Fprintf(w, "  %-8s %7d %8s %8s %8s %8s %8s %8s\n",
			r.Classification, r.Samples,
			pct(r.AvgReturn1d), pct(r.AvgReturn3d), pct(r.AvgReturn5d),
			pct(r.WinRate5d), pct(r.TargetHitRate), pct(r.StopHitRate))
	}
}

// printRules prints alert rules one per line
func printRules(w io.Writer, rules []contracts.AlertRule) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "⚠️  No alert rules (default evaluation applies)")
		return
	}
	for _, r := range rules {
		mark := "❌"
		if r.Enabled {
			mark = "✅"
		}
		fmt.Fprintf(w, "  %s #%-4d %-24s type=%-12s channels=%s\n",
			mark, r.ID, r.Name, r.AlertType, strings.Join(r.Channels, ","))
	}
}

// printJobStats prints scheduler statistics sorted by job name
func printJobStats(w io.Writer, stats map[string]scheduler.JobStats) {
	names := make([]string, 0, len(stats))
	for n := range stats {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		st := stats[n]
		fmt.Fprintf(w, "  %-14s [%s] runs=%d ok=%d fail=%d skipped=%d (%.0f%%)\n",
			n, st.Schedule, st.TotalRuns, st.SuccessCount, st.FailureCount, st.SkippedCount, st.SuccessRate*100)
		if st.LastRun != nil {
			fmt.Fprintf(w, "      last run : %s\n", st.LastRun.Format("2006-01-02 15:04:05"))
		}
		if st.NextRun != nil {
			fmt.Fprintf(w, "      next run : %s\n", st.NextRun.Format("2006-01-02 15:04:05"))
		}
	}
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
