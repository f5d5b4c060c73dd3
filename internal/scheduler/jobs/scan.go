package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/tickerscope/internal/scan"
	"github.com/wonny/tickerscope/pkg/logger"
)

// ScanRunner is a built scan pipeline
type ScanRunner interface {
	Run(ctx context.Context, tickers []string) scan.Summary
}

// PipelineFactory builds a fresh pipeline per run so alert rules are reloaded
type PipelineFactory func(ctx context.Context) (ScanRunner, error)

// TickerSource resolves the tickers to scan
type TickerSource func(ctx context.Context) ([]string, error)

// ScanJob runs the scan pipeline on a schedule
type ScanJob struct {
	schedule string
	build    PipelineFactory
	tickers  TickerSource
	logger   *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(schedule string, build PipelineFactory, tickers TickerSource, log *logger.Logger) *ScanJob {
	return &ScanJob{
		schedule: schedule,
		build:    build,
		tickers:  tickers,
		logger:   log.WithComponent("scan_job"),
	}
}

// Name returns the job name
func (j *ScanJob) Name() string { return "scan" }

// Schedule returns the cron schedule (default: 16:30 on weekdays, after close)
func (j *ScanJob) Schedule() string { return j.schedule }

// Run executes one scan
func (j *ScanJob) Run(ctx context.Context) error {
	tickers, err := j.tickers(ctx)
	if err != nil {
		return fmt.Errorf("resolve tickers: %w", err)
	}
	if len(tickers) == 0 {
		j.logger.Warn("No tickers to scan")
		return nil
	}

	pipeline, err := j.build(ctx)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	summary := pipeline.Run(ctx, tickers)
	j.logger.WithFields(map[string]interface{}{
		"run_id":   summary.RunID,
		"analyzed": summary.Analyzed,
		"filtered": summary.Filtered,
		"failed":   summary.Failed,
		"alerts":   summary.Alerts,
	}).Info("Scheduled scan finished")

	// 전 종목 실패 → 재시도 대상
	if summary.Tickers > 0 && summary.Failed == summary.Tickers {
		return fmt.Errorf("all %d tickers failed", summary.Failed)
	}
	return nil
}
