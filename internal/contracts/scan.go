package contracts

import "time"

// ScanResult is the persisted row for one ticker/run
type ScanResult struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Ticker    string    `json:"ticker"`
	ScannedAt time.Time `json:"scanned_at"`
	Analysis  Analysis  `json:"analysis"`
}

// ReturnRecord holds forward returns in percent, rounded to 2 decimals.
// nil = no candle for that offset (or not yet computed).
type ReturnRecord struct {
	ScanResultID  int64    `json:"scan_result_id"`
	Return1d      *float64 `json:"return_1d"`
	Return3d      *float64 `json:"return_3d"`
	Return5d      *float64 `json:"return_5d"`
	MaxGain5d     *float64 `json:"max_gain_5d"`
	MaxDrawdown5d *float64 `json:"max_drawdown_5d"` // positive magnitude below entry
	HitTarget     *bool    `json:"hit_target"`
	HitStopLoss   *bool    `json:"hit_stop_loss"`
}

// IsEmpty reports whether nothing could be computed
func (r ReturnRecord) IsEmpty() bool {
	return r.Return1d == nil && r.Return3d == nil && r.Return5d == nil &&
		r.MaxGain5d == nil && r.MaxDrawdown5d == nil
}

// Pick is a previously persisted decision, as seen by the return tracker
type Pick struct {
	ScanResultID   int64          `json:"scan_result_id"`
	Ticker         string         `json:"ticker"`
	ScannedAt      time.Time      `json:"scanned_at"`
	EntryPrice     float64        `json:"entry_price"`
	Classification Classification `json:"classification"`
	TargetPrice    float64        `json:"target_price"`
	StopLoss       float64        `json:"stop_loss"`
	Returns        ReturnRecord   `json:"returns"`
}

// AccuracyReport aggregates graded picks for one classification
type AccuracyReport struct {
	Classification Classification `json:"classification"`
	Samples        int            `json:"samples"`
	AvgReturn1d    *float64       `json:"avg_return_1d"`
	AvgReturn3d    *float64       `json:"avg_return_3d"`
	AvgReturn5d    *float64       `json:"avg_return_5d"`
	WinRate5d      *float64       `json:"win_rate_5d"`    // % of picks with return5d > 0
	TargetHitRate  *float64       `json:"target_hit_rate"` // %
	StopHitRate    *float64       `json:"stop_hit_rate"`   // %
}
