package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// trackCmd represents the track command
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "과거 픽의 전방 수익률 추적",
	Long: `아직 채점되지 않은 scan_results에 대해
1/3/5일 수익률, 5일 최대 상승/하락, 목표가/손절가 도달 여부를 계산합니다.

Example:
  go run ./cmd/scope track`,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	printHeader(out, "Track Returns")

	start := time.Now()
	summary, err := a.tracker().Run(ctx, start)
	if err != nil {
		return fmt.Errorf("❌ track returns: %w", err)
	}

	fmt.Fprintf(out, "  Picks     : %d\n", summary.Picks)
	fmt.Fprintf(out, "  Updated   : %d\n", summary.Updated)
	fmt.Fprintf(out, "  No data   : %d\n", summary.NoData)
	fmt.Fprintf(out, "  Failed    : %d\n", summary.Failed)
	fmt.Fprintln(out, singleLine)
	fmt.Fprintf(out, "✅ Tracking completed in %.2fs\n", time.Since(start).Seconds())
	return nil
}
