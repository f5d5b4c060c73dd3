package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

// 거래일 기준 변동 구간
const (
	ShortWindow     = 1
	WeekWindow      = 5
	MonthWindow     = 21
	AvgVolumeWindow = 30
	PriceLookback   = 365 * 24 * time.Hour
)

// Client fetches daily bars from the Yahoo Finance chart API
// ⭐ SSOT: 가격/캔들 데이터는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		RegularMarketTime  int64    `json:"regularMarketTime"`
		FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// NewClient creates a new Yahoo chart client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// FetchCandles returns daily candles between from and to, oldest first
func (c *Client) FetchCandles(ctx context.Context, ticker string, from, to time.Time) []contracts.HistoricalCandle {
	result, ok := c.chart(ctx, ticker, from, to)
	if !ok {
		return nil
	}
	return Candles(result)
}

// FetchPrice builds a snapshot from one year of daily candles
func (c *Client) FetchPrice(ctx context.Context, ticker string) *contracts.PriceSnapshot {
	now := c.now()
	result, ok := c.chart(ctx, ticker, now.Add(-PriceLookback), now)
	if !ok {
		return nil
	}

	snap := Snapshot(result, now)
	if snap == nil {
		c.logger.WithTicker(ticker).Warn("Chart has no usable closes")
	}
	return snap
}

func (c *Client) chart(ctx context.Context, ticker string, from, to time.Time) (*chartResult, bool) {
	ticker = strings.ToUpper(ticker)
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", from.Unix()))
	q.Set("period2", fmt.Sprintf("%d", to.Unix()))
	q.Set("interval", "1d")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		c.logger.WithError(err).WithTicker(ticker).Warn("Failed to fetch chart")
		return nil, false
	}
	if resp.Chart.Error != nil {
		c.logger.WithTicker(ticker).WithField("code", resp.Chart.Error.Code).Warn("Chart API returned error")
		return nil, false
	}
	if len(resp.Chart.Result) == 0 {
		return nil, false
	}
	return &resp.Chart.Result[0], true
}

// Candles drops bars without a close and sorts by date
func Candles(r *chartResult) []contracts.HistoricalCandle {
	if r == nil || len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	candles := make([]contracts.HistoricalCandle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closePrice := at(q.Close, i)
		if closePrice <= 0 {
			continue
		}
		c := contracts.HistoricalCandle{
			Date:  time.Unix(ts, 0).UTC(),
			Open:  at(q.Open, i),
			High:  at(q.High, i),
			Low:   at(q.Low, i),
			Close: closePrice,
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		// 결측 OHLC는 종가로 채움
		if c.Open <= 0 {
			c.Open = closePrice
		}
		if c.High <= 0 {
			c.High = closePrice
		}
		if c.Low <= 0 {
			c.Low = closePrice
		}
		candles = append(candles, c)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })
	return candles
}

// Snapshot derives the price snapshot. Changes are measured in trading days
// back from the latest close; the 30d change uses 21 sessions.
func Snapshot(r *chartResult, now time.Time) *contracts.PriceSnapshot {
	candles := Candles(r)
	if len(candles) == 0 {
		return nil
	}

	last := candles[len(candles)-1]
	price := last.Close
	if r.Meta.RegularMarketPrice != nil && *r.Meta.RegularMarketPrice > 0 {
		price = *r.Meta.RegularMarketPrice
	}

	snap := &contracts.PriceSnapshot{
		Price:     contracts.Round2(price),
		Volume:    last.Volume,
		Timestamp: now,
	}
	if r.Meta.RegularMarketTime > 0 {
		snap.Timestamp = time.Unix(r.Meta.RegularMarketTime, 0).UTC()
	}

	if base, ok := closeBack(candles, ShortWindow); ok {
		snap.Change1d = contracts.Round2(price - base)
		snap.Change1dPercent = pct(price, base)
	}
	if base, ok := closeBack(candles, WeekWindow); ok {
		snap.Change5d = contracts.Round2(price - base)
		snap.Change5dPercent = pct(price, base)
	}
	if base, ok := closeBack(candles, MonthWindow); ok {
		snap.Change30d = contracts.Round2(price - base)
		snap.Change30dPercent = pct(price, base)
	}

	start := len(candles) - AvgVolumeWindow
	if start < 0 {
		start = 0
	}
	var total int64
	for _, c := range candles[start:] {
		total += c.Volume
	}
	snap.AvgVolume30d = float64(total) / float64(len(candles)-start)
	if snap.AvgVolume30d > 0 {
		snap.RelativeVolume = contracts.Round2(float64(snap.Volume) / snap.AvgVolume30d)
	}

	high, low := candles[0].High, candles[0].Low
	for _, c := range candles {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	if r.Meta.FiftyTwoWeekHigh != nil && *r.Meta.FiftyTwoWeekHigh > 0 {
		high = *r.Meta.FiftyTwoWeekHigh
	}
	if r.Meta.FiftyTwoWeekLow != nil && *r.Meta.FiftyTwoWeekLow > 0 {
		low = *r.Meta.FiftyTwoWeekLow
	}
	snap.High52w = contracts.Round2(high)
	snap.Low52w = contracts.Round2(low)

	return snap
}

func closeBack(candles []contracts.HistoricalCandle, sessions int) (float64, bool) {
	idx := len(candles) - 1 - sessions
	if idx < 0 || candles[idx].Close <= 0 {
		return 0, false
	}
	return candles[idx].Close, true
}

func pct(price, base float64) float64 {
	return contracts.Round2((price - base) / base * 100)
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
