package sec

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

const (
	// DefaultTickersURL maps tickers to CIK numbers
	DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
	// FilingWindow is the lookback used for the recent filings count
	FilingWindow = 90 * 24 * time.Hour
	cikTTL       = 24 * time.Hour
	filingsTTL   = 6 * time.Hour
)

// Client counts recent filings through SEC EDGAR
// ⭐ SSOT: EDGAR 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	tickersURL string
	cache      *gocache.Cache
	mu         sync.Mutex
	now        func() time.Time
}

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

type submissions struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			FilingDate []string `json:"filingDate"`
			Form       []string `json:"form"`
		} `json:"recent"`
	} `json:"filings"`
}

// NewClient creates a new EDGAR client. EDGAR rejects requests without a
// descriptive User-Agent, so the http client must carry one.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("sec"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		tickersURL: DefaultTickersURL,
		cache:      gocache.New(cikTTL, time.Hour),
		now:        time.Now,
	}
}

// WithTickersURL overrides the ticker→CIK listing location
func (c *Client) WithTickersURL(u string) *Client {
	c.tickersURL = u
	return c
}

// RecentFilings returns the number of filings in the last 90 days.
// nil means EDGAR does not know the ticker or could not be reached.
func (c *Client) RecentFilings(ctx context.Context, ticker string) *int {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	key := "filings:" + ticker
	if v, ok := c.cache.Get(key); ok {
		n := v.(int)
		return &n
	}

	cik, ok := c.lookupCIK(ctx, ticker)
	if !ok {
		return nil
	}

	var sub submissions
	endpoint := fmt.Sprintf("%s/submissions/CIK%010d.json", c.baseURL, cik)
	if err := c.httpClient.GetJSON(ctx, endpoint, &sub); err != nil {
		c.logger.WithError(err).WithTicker(ticker).Warn("Failed to fetch submissions")
		return nil
	}

	n := CountSince(sub.Filings.Recent.FilingDate, c.now().Add(-FilingWindow))
	c.cache.Set(key, n, filingsTTL)

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"cik":     cik,
		"filings": n,
	}).Debug("Counted recent filings")
	return &n
}

func (c *Client) lookupCIK(ctx context.Context, ticker string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, loaded := c.cache.Get("cik:loaded"); !loaded {
		var listing map[string]tickerEntry
		if err := c.httpClient.GetJSON(ctx, c.tickersURL, &listing); err != nil {
			c.logger.WithError(err).Warn("Failed to load ticker→CIK listing")
			return 0, false
		}
		for _, e := range listing {
			c.cache.Set("cik:"+strings.ToUpper(e.Ticker), e.CIK, cikTTL)
		}
		c.cache.Set("cik:loaded", true, cikTTL)
	}

	v, ok := c.cache.Get("cik:" + ticker)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// CountSince counts YYYY-MM-DD dates on or after since
func CountSince(dates []string, since time.Time) int {
	cutoff := since.UTC().Format("2006-01-02")
	n := 0
	for _, d := range dates {
		// ISO 날짜는 문자열 비교로 충분
		if len(d) == len(cutoff) && d >= cutoff {
			n++
		}
	}
	return n
}

// Enrich wraps a fundamentals provider and fills RecentFilings
type Enrich struct {
	base contracts.FundamentalsProvider
	sec  *Client
}

// NewEnrich creates the decorator
func NewEnrich(base contracts.FundamentalsProvider, client *Client) *Enrich {
	return &Enrich{base: base, sec: client}
}

// FetchFundamentals implements contracts.FundamentalsProvider
func (e *Enrich) FetchFundamentals(ctx context.Context, ticker string) *contracts.FundamentalsSnapshot {
	snap := e.base.FetchFundamentals(ctx, ticker)
	if snap == nil || snap.IsETF {
		return snap
	}
	if snap.RecentFilings == nil {
		snap.RecentFilings = e.sec.RecentFilings(ctx, ticker)
	}
	return snap
}
