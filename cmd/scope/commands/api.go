package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/api"
	"github.com/wonny/tickerscope/internal/api/handlers"
	"github.com/wonny/tickerscope/internal/notify"
	"github.com/wonny/tickerscope/internal/scan"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET   /health                 - Health check
  GET   /api/accuracy?days=30   - 분류별 적중률
  GET   /api/rules              - 알림 규칙 목록
  POST  /api/rules              - 알림 규칙 생성
  PATCH /api/rules/{id}         - 알림 규칙 활성/비활성
  GET   /api/scans/latest       - 최근 스캔 결과
  GET   /api/analyze/{ticker}   - 단일 종목 분석 (저장 없음)
  GET   /api/jobs               - 스케줄러 상태 (--with-scheduler)
  POST  /api/jobs/{name}/run    - 작업 즉시 실행 (--with-scheduler)
  GET   /ws/alerts              - 실시간 알림 WebSocket

Example:
  go run ./cmd/scope api
  go run ./cmd/scope api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "스케줄러를 같은 프로세스에서 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "=== tickerscope API Server ===")

	a, err := newApp(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	hub := notify.NewHub(a.log)
	defer hub.Close()

	routes := api.Routes{
		Health:   a.db,
		Accuracy: handlers.NewAccuracyHandler(a.tracker(), a.log),
		Rules:    handlers.NewRuleHandler(alerts.NewRepository(a.db.Pool), a.log),
		Scans: handlers.NewScanHandler(scan.NewRepository(a.db.Pool),
			a.pipeline(context.Background(), nil, true), a.log),
		Alerts: hub,
	}

	if apiWithScheduler {
		s, err := a.newScheduler(hub)
		if err != nil {
			return fmt.Errorf("❌ build scheduler: %w", err)
		}
		routes.Jobs = handlers.NewJobHandler(s, a.log)
		s.Start()
		defer s.Stop()
	}

	server := api.New(a.cfg, a.log, api.NewRouter(routes, a.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
