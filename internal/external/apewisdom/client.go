package apewisdom

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/external"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

const (
	// MaxPages bounds how deep the ranking is walked (100 tickers per page)
	MaxPages = 5
	// ListingTTL is how long one ranking snapshot is reused
	ListingTTL = 10 * time.Minute
)

// Client reads the ApeWisdom mention ranking.
// ApeWisdom is the rank source; it has no per-ticker endpoint, so the
// ranking is fetched once and shared across tickers until it expires.
// ⭐ SSOT: ApeWisdom API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string

	mu        sync.Mutex
	listing   map[string]Entry
	order     []string
	fetchedAt time.Time
	now       func() time.Time
}

// Entry is one row of the ranking
type Entry struct {
	Rank           int                `json:"rank"`
	Ticker         string             `json:"ticker"`
	Name           string             `json:"name"`
	Mentions       external.FlexFloat `json:"mentions"`
	Upvotes        external.FlexFloat `json:"upvotes"`
	Rank24hAgo     external.FlexFloat `json:"rank_24h_ago"`
	Mentions24hAgo external.FlexFloat `json:"mentions_24h_ago"`
}

type pageResponse struct {
	Count       int     `json:"count"`
	Pages       int     `json:"pages"`
	CurrentPage int     `json:"currentPage"`
	Results     []Entry `json:"results"`
}

// NewClient creates a new ApeWisdom client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("apewisdom"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// Source implements contracts.SentimentProvider
func (c *Client) Source() contracts.SentimentSource {
	return contracts.SourceApeWisdom
}

// FetchSentiment returns the ticker's ranking row, or nothing when unranked
func (c *Client) FetchSentiment(ctx context.Context, ticker string) []contracts.SentimentRecord {
	listing, _ := c.ranking(ctx)
	entry, ok := listing[strings.ToUpper(ticker)]
	if !ok {
		return nil
	}
	return []contracts.SentimentRecord{ToRecord(entry, c.now())}
}

// Trending returns the top `limit` tickers by mentions rank
func (c *Client) Trending(ctx context.Context, limit int) []string {
	_, order := c.ranking(ctx)
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// ranking returns the cached ranking, refreshing it when stale.
// A failed refresh keeps serving the previous snapshot.
func (c *Client) ranking(ctx context.Context) (map[string]Entry, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listing != nil && c.now().Sub(c.fetchedAt) < ListingTTL {
		return c.listing, c.order
	}

	listing, order, err := c.fetchRanking(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to fetch ApeWisdom ranking")
		return c.listing, c.order
	}

	c.listing, c.order, c.fetchedAt = listing, order, c.now()
	return listing, order
}

func (c *Client) fetchRanking(ctx context.Context) (map[string]Entry, []string, error) {
	listing := make(map[string]Entry)
	var order []string

	for page := 1; page <= MaxPages; page++ {
		var resp pageResponse
		url := fmt.Sprintf("%s/filter/all-stocks/page/%d", c.baseURL, page)
		if err := c.httpClient.GetJSON(ctx, url, &resp); err != nil {
			if page == 1 {
				return nil, nil, fmt.Errorf("%w: %v", contracts.ErrProviderUnavailable, err)
			}
			// 일부 페이지만 실패 → 받은 만큼 사용
			c.logger.WithError(err).WithField("page", page).Warn("Partial ApeWisdom ranking")
			break
		}

		for _, e := range resp.Results {
			t := strings.ToUpper(strings.TrimSpace(e.Ticker))
			if t == "" {
				continue
			}
			if _, dup := listing[t]; dup {
				continue
			}
			e.Ticker = t
			listing[t] = e
			order = append(order, t)
		}

		if page >= resp.Pages {
			break
		}
	}

	c.logger.WithField("tickers", len(order)).Debug("Fetched ApeWisdom ranking")
	return listing, order, nil
}

// ToRecord converts a ranking row. ApeWisdom reports no polarity, so
// sentiment is neutral; momentum is mentions now over 24h ago.
func ToRecord(e Entry, at time.Time) contracts.SentimentRecord {
	rec := contracts.SentimentRecord{
		Ticker:    e.Ticker,
		Source:    contracts.SourceApeWisdom,
		Mentions:  max(int(e.Mentions), 0),
		Sentiment: 0,
		Timestamp: at,
	}
	if e.Rank >= 1 {
		rec.Rank = contracts.IntPtr(e.Rank)
	}
	if e.Mentions24hAgo > 0 && e.Mentions > 0 {
		rec.MomentumRatio = contracts.Float64Ptr(float64(e.Mentions) / float64(e.Mentions24hAgo))
	}
	return rec
}
