package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/tickerscope/internal/contracts"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [TICKER...]",
	Short: "종목 스캔 실행",
	Long: `센티먼트/가격/펀더멘털을 수집해 종목을 점수화하고 분류합니다.

티커 우선순위:
  1. 인자로 전달한 티커
  2. --file (또는 SCAN_TICKERS_FILE)
  3. ApeWisdom 트렌딩 상위 --limit 개

결과는 scan_results에 저장되고 알림 규칙이 평가됩니다.
--dry-run은 저장과 알림을 모두 건너뜁니다.

Example:
  go run ./cmd/scope scan GME AMC
  go run ./cmd/scope scan --file tickers.txt
  go run ./cmd/scope scan --dry-run --limit 20`,
	RunE: runScan,
}

var (
	scanFile   string
	scanDryRun bool
	scanLimit  int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFile, "file", "", "티커 파일 (한 줄에 하나, # 주석)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "저장/알림 없이 분석만")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 50, "트렌딩 티커 개수")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, !scanDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers, err := a.resolveTickers(ctx, args, scanFile, scanLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	title := "Scan"
	if scanDryRun {
		title = "Scan (dry run)"
	}
	printHeader(out, title)
	fmt.Fprintf(out, "  Strategy  : %s v%s\n", a.strategy.Meta.StrategyID, a.strategy.Meta.Version)
	fmt.Fprintf(out, "  Tickers   : %s\n", strings.Join(tickers, " "))

	var notifiers []contracts.Notifier
	if !scanDryRun {
		notifiers = a.notifiers(nil)
	}
	pipeline := a.pipeline(ctx, notifiers, scanDryRun)
	summary := pipeline.Run(ctx, tickers)

	printSummary(out, summary)
	return nil
}
