package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/tickerscope/internal/notify"
	"github.com/wonny/tickerscope/internal/scheduler"
	"github.com/wonny/tickerscope/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- scan:          SCAN_SCHEDULE (기본: 평일 16:30, 장 마감 후)
- track_returns: TRACK_SCHEDULE (기본: 매일 18:00)

Subcommands:
  start   - 스케줄러 시작 (Ctrl+C로 종료)
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/scope scheduler start
  go run ./cmd/scope scheduler list
  go run ./cmd/scope scheduler run scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

var schedulerLimit int

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd, schedulerListCmd, schedulerRunCmd, schedulerStatusCmd)

	schedulerCmd.PersistentFlags().IntVar(&schedulerLimit, "limit", 50, "트렌딩 티커 개수 (티커 파일이 없을 때)")
}

// newScheduler registers the scan and track jobs. hub may be nil.
func (a *app) newScheduler(hub *notify.Hub) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log)
	notifiers := a.notifiers(hub)

	scanJob := jobs.NewScanJob(a.cfg.Scan.ScanSchedule,
		func(ctx context.Context) (jobs.ScanRunner, error) {
			return a.pipeline(ctx, notifiers, false), nil
		},
		func(ctx context.Context) ([]string, error) {
			return a.resolveTickers(ctx, nil, "", schedulerLimit)
		},
		a.log)

	trackJob := jobs.NewTrackReturnsJob(a.cfg.Scan.TrackSchedule, a.tracker(), a.log)

	for _, job := range []scheduler.Job{scanJob, trackJob} {
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newScheduler(nil)
	if err != nil {
		return fmt.Errorf("❌ build scheduler: %w", err)
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Scheduler")
	printJobStats(out, s.Stats())

	s.Start()
	fmt.Fprintln(out, "\n✅ Scheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	s.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newScheduler(nil)
	if err != nil {
		return fmt.Errorf("❌ build scheduler: %w", err)
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Registered Jobs")
	stats := s.Stats()
	for _, name := range s.JobNames() {
		fmt.Fprintf(out, "  %-14s %s\n", name, stats[name].Schedule)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newScheduler(nil)
	if err != nil {
		return fmt.Errorf("❌ build scheduler: %w", err)
	}
	defer s.Stop()

	out := cmd.OutOrStdout()
	printHeader(out, "Run Job: "+args[0])

	result, err := s.RunJob(args[0])
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	if !result.Success {
		return fmt.Errorf("❌ job %s failed after %d attempts: %s", result.JobName, result.Attempts, result.Error)
	}

	fmt.Fprintf(out, "✅ Job %s completed in %.2fs\n", result.JobName, result.Duration.Seconds())
	return nil
}

// showStatus prints schedules and next runs. History lives in the running
// process; use GET /api/jobs on the API server for live statistics.
func showStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newScheduler(nil)
	if err != nil {
		return fmt.Errorf("❌ build scheduler: %w", err)
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Scheduler Status")
	printJobStats(out, s.Stats())
	return nil
}
