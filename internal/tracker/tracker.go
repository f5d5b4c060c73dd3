package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/tickerscope/internal/contracts"
)

// RunSummary 추적 실행 결과
type RunSummary struct {
	Picks   int `json:"picks"`
	Updated int `json:"updated"`
	NoData  int `json:"no_data"`
	Failed  int `json:"failed"`
}

// Tracker 전방 수익률 추적기
type Tracker struct {
	repo    contracts.PickRepository
	candles contracts.CandleProvider
	log     zerolog.Logger
}

// NewTracker 새 추적기 생성
func NewTracker(repo contracts.PickRepository, candles contracts.CandleProvider, log zerolog.Logger) *Tracker {
	return &Tracker{
		repo:    repo,
		candles: candles,
		log:     log.With().Str("component", "tracker").Logger(),
	}
}

// Run grades every pending pick once. Per-pick failures are logged and skipped.
func (t *Tracker) Run(ctx context.Context, now time.Time) (RunSummary, error) {
	var summary RunSummary

	picks, err := t.repo.PendingPicks(ctx, now)
	if err != nil {
		return summary, fmt.Errorf("load pending picks: %w", err)
	}
	summary.Picks = len(picks)

	for _, pick := range picks {
		select {
		case <-ctx.Done():
			t.log.Warn().Msg("context cancelled during return tracking")
			return summary, ctx.Err()
		default:
		}

		from := pick.ScannedAt
		to := pick.ScannedAt.Add(CandleWindow)
		candles := t.candles.FetchCandles(ctx, pick.Ticker, from, to)

		rec := ComputeReturns(pick, candles)
		if rec.IsEmpty() {
			summary.NoData++
			t.log.Debug().
				Str("ticker", pick.Ticker).
				Int64("scan_result_id", pick.ScanResultID).
				Int("candles", len(candles)).
				Msg("no forward candles yet")
			continue
		}

		if err := t.repo.SaveReturns(ctx, rec); err != nil {
			summary.Failed++
			t.log.Error().Err(err).
				Str("ticker", pick.Ticker).
				Int64("scan_result_id", pick.ScanResultID).
				Msg("failed to save returns")
			continue
		}
		summary.Updated++
	}

	t.log.Info().
		Int("picks", summary.Picks).
		Int("updated", summary.Updated).
		Int("no_data", summary.NoData).
		Int("failed", summary.Failed).
		Msg("return tracking completed")

	return summary, nil
}

// Report builds accuracy for picks scanned in the last `days` days
func (t *Tracker) Report(ctx context.Context, now time.Time, days int) ([]contracts.AccuracyReport, error) {
	if days <= 0 {
		days = 30
	}
	picks, err := t.repo.GradedPicks(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("load graded picks: %w", err)
	}
	return Accuracy(picks), nil
}
