package stocktwits

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Window is how far back messages count as mentions
const Window = 24 * time.Hour

// Client reads a symbol's message stream from Stocktwits
// ⭐ SSOT: Stocktwits API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

type streamResponse struct {
	Response struct {
		Status int `json:"status"`
	} `json:"response"`
	Symbol struct {
		Symbol         string `json:"symbol"`
		WatchlistCount int    `json:"watchlist_count"`
	} `json:"symbol"`
	Messages []message `json:"messages"`
}

type message struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Entities  struct {
		Sentiment *struct {
			Basic string `json:"basic"`
		} `json:"sentiment"`
	} `json:"entities"`
}

// NewClient creates a new Stocktwits client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("stocktwits"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// Source implements contracts.SentimentProvider
func (c *Client) Source() contracts.SentimentSource {
	return contracts.SourceStocktwits
}

// FetchSentiment returns one record built from the latest messages
func (c *Client) FetchSentiment(ctx context.Context, ticker string) []contracts.SentimentRecord {
	ticker = strings.ToUpper(ticker)
	endpoint := fmt.Sprintf("%s/streams/symbol/%s.json", c.baseURL, url.PathEscape(ticker))

	var resp streamResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to fetch Stocktwits stream")
		return nil
	}

	rec, ok := Summarize(ticker, resp.Messages, c.now())
	if !ok {
		return nil
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"mentions":  rec.Mentions,
		"sentiment": rec.Sentiment,
	}).Debug("Fetched Stocktwits sentiment")

	return []contracts.SentimentRecord{rec}
}

// Summarize counts messages inside the window and scores tagged ones:
// sentiment = (bull - bear) / (bull + bear) * 100, 0 when nothing is tagged.
func Summarize(ticker string, messages []message, now time.Time) (contracts.SentimentRecord, bool) {
	var mentions, bull, bear int
	cutoff := now.Add(-Window)

	for _, m := range messages {
		if !m.CreatedAt.IsZero() && m.CreatedAt.Before(cutoff) {
			continue
		}
		mentions++
		if m.Entities.Sentiment == nil {
			continue
		}
		switch strings.ToLower(m.Entities.Sentiment.Basic) {
		case "bullish":
			bull++
		case "bearish":
			bear++
		}
	}

	if mentions == 0 {
		return contracts.SentimentRecord{}, false
	}

	sentiment := 0.0
	if tagged := bull + bear; tagged > 0 {
		sentiment = float64(bull-bear) / float64(tagged) * 100
	}

	return contracts.SentimentRecord{
		Ticker:    ticker,
		Source:    contracts.SourceStocktwits,
		Mentions:  mentions,
		Sentiment: sentiment,
		Timestamp: now,
	}, true
}
