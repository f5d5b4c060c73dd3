package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tickerscope/internal/scan"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER",
	Short: "단일 종목 분석 (저장 없음)",
	Long: `한 종목의 점수/분류/목표가를 계산해 출력합니다.
DB 저장과 알림은 하지 않습니다.

Example:
  go run ./cmd/scope analyze GME
  go run ./cmd/scope analyze GME --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeJSON bool

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "JSON으로 출력")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := scan.NormalizeTickers(args)
	if len(tickers) == 0 {
		return fmt.Errorf("invalid ticker: %q", args[0])
	}

	res := a.pipeline(ctx, nil, true).Analyze(ctx, tickers[0])

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return printJSON(out, res.Analysis)
	}

	printHeader(out, "Analyze "+tickers[0])
	if !res.Admitted {
		fmt.Fprintf(out, "⚠️  Filtered out: %s\n", res.Reason)
		return nil
	}
	printAnalysis(out, res.Analysis)
	return nil
}
