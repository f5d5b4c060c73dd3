package tracker

import (
	"time"

	"github.com/wonny/tickerscope/internal/contracts"
)

const (
	// MinPickAge / MaxPickAge bound which picks are graded
	MinPickAge = 24 * time.Hour
	MaxPickAge = 30 * 24 * time.Hour

	// CandleWindow is how far past entry candles are fetched
	CandleWindow = 7 * 24 * time.Hour

	maxOffset = 5
)

// dayOffset counts calendar days between entry and candle dates (UTC)
func dayOffset(entry, candle time.Time) int {
	e := time.Date(entry.UTC().Year(), entry.UTC().Month(), entry.UTC().Day(), 0, 0, 0, 0, time.UTC)
	c := time.Date(candle.UTC().Year(), candle.UTC().Month(), candle.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return int(c.Sub(e).Hours() / 24)
}

// offsetMap keys candles by days since entry; the first candle seen per offset wins
func offsetMap(entry time.Time, candles []contracts.HistoricalCandle) map[int]contracts.HistoricalCandle {
	out := make(map[int]contracts.HistoricalCandle, len(candles))
	for _, c := range candles {
		off := dayOffset(entry, c.Date)
		if off < 0 {
			continue
		}
		if _, exists := out[off]; !exists {
			out[off] = c
		}
	}
	return out
}

// windowClosed reports whether a candle at or past offset 5 exists, so the
// 0..5 max/min can no longer change
func windowClosed(byOffset map[int]contracts.HistoricalCandle) bool {
	for off := range byOffset {
		if off >= maxOffset {
			return true
		}
	}
	return false
}

// ComputeReturns grades one pick against forward candles.
// Percentages are rounded to 2 decimals; missing offsets stay nil.
// Max gain/drawdown and hit flags stay nil until the 5-day window has closed;
// they are written once and never revised.
// ⭐ SSOT: 전방 수익률 계산은 여기서만
func ComputeReturns(pick contracts.Pick, candles []contracts.HistoricalCandle) contracts.ReturnRecord {
	rec := contracts.ReturnRecord{ScanResultID: pick.ScanResultID}
	entry := pick.EntryPrice
	if entry <= 0 {
		return rec
	}

	byOffset := offsetMap(pick.ScannedAt, candles)

	pct := func(v float64) *float64 {
		r := contracts.Round2((v - entry) / entry * 100)
		return &r
	}

	if c, ok := byOffset[1]; ok {
		rec.Return1d = pct(c.Close)
	}
	if c, ok := byOffset[3]; ok {
		rec.Return3d = pct(c.Close)
	}
	if c, ok := byOffset[5]; ok {
		rec.Return5d = pct(c.Close)
	}

	if !windowClosed(byOffset) {
		return rec
	}

	var maxHigh, minLow float64
	found := false
	for off := 0; off <= maxOffset; off++ {
		c, ok := byOffset[off]
		if !ok {
			continue
		}
		if !found || c.High > maxHigh {
			maxHigh = c.High
		}
		if !found || c.Low < minLow {
			minLow = c.Low
		}
		found = true
	}
	if !found {
		return rec
	}

	gain := contracts.Round2((maxHigh - entry) / entry * 100)
	drawdown := contracts.Round2((entry - minLow) / entry * 100)
	rec.MaxGain5d = &gain
	rec.MaxDrawdown5d = &drawdown

	if pick.TargetPrice > entry {
		targetPct := (pick.TargetPrice - entry) / entry * 100
		rec.HitTarget = contracts.BoolPtr(gain >= contracts.Round2(targetPct))
	}
	if pick.StopLoss > 0 && pick.StopLoss < entry {
		stopPct := (entry - pick.StopLoss) / entry * 100
		rec.HitStopLoss = contracts.BoolPtr(drawdown >= contracts.Round2(stopPct))
	}

	return rec
}
