package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// accuracyCmd represents the accuracy command
var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "분류별 적중률 리포트",
	Long: `최근 N일 동안 채점된 픽을 분류별로 집계합니다.
평균 수익률(1/3/5일), 5일 승률, 목표가/손절가 도달률을 보여줍니다.

Example:
  go run ./cmd/scope accuracy
  go run ./cmd/scope accuracy --days 90 --json`,
	RunE: runAccuracy,
}

var (
	accuracyDays int
	accuracyJSON bool
)

func init() {
	rootCmd.AddCommand(accuracyCmd)

	accuracyCmd.Flags().IntVar(&accuracyDays, "days", 30, "집계 기간 (일)")
	accuracyCmd.Flags().BoolVar(&accuracyJSON, "json", false, "JSON으로 출력")
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	reports, err := a.tracker().Report(ctx, time.Now(), accuracyDays)
	if err != nil {
		return fmt.Errorf("❌ accuracy report: %w", err)
	}

	out := cmd.OutOrStdout()
	if accuracyJSON {
		return printJSON(out, reports)
	}

	printHeader(out, fmt.Sprintf("Accuracy (last %d days)", accuracyDays))
	printAccuracy(out, reports)
	return nil
}
