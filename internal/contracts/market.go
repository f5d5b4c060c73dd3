package contracts

import (
	"strings"
	"time"
)

// PriceSnapshot is the latest quote plus derived changes for a ticker.
// high52w >= price >= low52w is expected but stale data is tolerated.
type PriceSnapshot struct {
	Ticker           string    `json:"ticker"`
	Price            float64   `json:"price"`
	Change1d         float64   `json:"change_1d"`
	Change1dPercent  float64   `json:"change_1d_percent"`
	Change5d         float64   `json:"change_5d"`
	Change5dPercent  float64   `json:"change_5d_percent"`
	Change30d        float64   `json:"change_30d"`
	Change30dPercent float64   `json:"change_30d_percent"`
	Volume           int64     `json:"volume"`
	AvgVolume30d     float64   `json:"avg_volume_30d"`
	RelativeVolume   float64   `json:"relative_volume"` // volume / avgVolume30d
	High52w          float64   `json:"high_52w"`
	Low52w           float64   `json:"low_52w"`
	Timestamp        time.Time `json:"timestamp"`
}

// FundamentalsSnapshot holds company data; nil pointers mean "not reported"
type FundamentalsSnapshot struct {
	Ticker            string    `json:"ticker"`
	Name              string    `json:"name"`
	Sector            string    `json:"sector"`
	Industry          string    `json:"industry"`
	Exchange          string    `json:"exchange"`
	Country           string    `json:"country"`
	MarketCap         float64   `json:"market_cap"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	PERatio           *float64  `json:"pe_ratio"`
	PSRatio           *float64  `json:"ps_ratio"`
	PBRatio           *float64  `json:"pb_ratio"`
	EPSGrowth         *float64  `json:"eps_growth"`       // percent
	RevenueGrowth     *float64  `json:"revenue_growth"`   // percent
	GrossMargin       *float64  `json:"gross_margin"`     // percent
	OperatingMargin   *float64  `json:"operating_margin"` // percent
	DebtEquity        *float64  `json:"debt_equity"`
	RecentFilings     *int      `json:"recent_filings"` // SEC filings, last 90 days; nil = unknown
	IsETF             bool      `json:"is_etf"`
	Timestamp         time.Time `json:"timestamp"`
}

// IsMajorExchange reports whether the listing venue is NYSE or NASDAQ
func (f *FundamentalsSnapshot) IsMajorExchange() bool {
	ex := strings.ToUpper(f.Exchange)
	return strings.Contains(ex, "NYSE") || strings.Contains(ex, "NASDAQ")
}

// IsOTC reports whether the listing venue is in the OTC family (OTC, OTCQB, Pink sheets)
func (f *FundamentalsSnapshot) IsOTC() bool {
	ex := strings.ToUpper(f.Exchange)
	return strings.Contains(ex, "OTC") || strings.Contains(ex, "PINK")
}

// HistoricalCandle is one daily bar
type HistoricalCandle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
