package contracts

import (
	"context"
	"time"
)

// ScanRepository persists scan results and price history
type ScanRepository interface {
	SaveScanResult(ctx context.Context, result *ScanResult) (int64, error)
	UpsertPriceHistory(ctx context.Context, ticker string, candles []HistoricalCandle) error
}

// AlertRepository reads rules and appends alert events
type AlertRepository interface {
	ListRules(ctx context.Context, enabledOnly bool) ([]AlertRule, error)
	SaveAlertEvent(ctx context.Context, event *AlertEvent) (int64, error)
}

// PickRepository feeds the return tracker
type PickRepository interface {
	PendingPicks(ctx context.Context, now time.Time) ([]Pick, error)
	SaveReturns(ctx context.Context, rec ReturnRecord) error
	GradedPicks(ctx context.Context, since time.Time) ([]Pick, error)
}
