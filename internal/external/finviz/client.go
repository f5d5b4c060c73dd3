package finviz

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Client scrapes the Finviz quote page for fundamentals
// ⭐ SSOT: Finviz 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Finviz client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("finviz"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// FetchFundamentals implements contracts.FundamentalsProvider
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) *contracts.FundamentalsSnapshot {
	ticker = strings.ToUpper(ticker)
	endpoint := fmt.Sprintf("%s/quote.ashx?t=%s", c.baseURL, url.QueryEscape(ticker))

	body, err := c.httpClient.GetBody(ctx, endpoint)
	if err != nil {
		c.logger.WithError(err).WithTicker(ticker).Warn("Failed to fetch quote page")
		return nil
	}

	snap, err := ParseQuote(body, c.now())
	if err != nil {
		c.logger.WithError(err).WithTicker(ticker).Warn("Failed to parse quote page")
		return nil
	}
	return snap
}

// ParseQuote reads the snapshot table and the sector/industry/country links
func ParseQuote(html []byte, at time.Time) (*contracts.FundamentalsSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	doc.Find("table.snapshot-table2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		// 라벨/값 쌍으로 반복
		for i := 0; i+1 < cells.Length(); i += 2 {
			label := strings.TrimSpace(cells.Eq(i).Text())
			if label == "" {
				continue
			}
			fields[label] = strings.TrimSpace(cells.Eq(i + 1).Text())
		}
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: snapshot table not found", contracts.ErrMissingData)
	}

	snap := &contracts.FundamentalsSnapshot{
		Name:      companyName(doc),
		Timestamp: at,
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.TrimSpace(a.Text())
		if text == "" {
			return
		}
		switch {
		case strings.Contains(href, "f=sec_") && snap.Sector == "":
			snap.Sector = text
		case strings.Contains(href, "f=ind_") && snap.Industry == "":
			snap.Industry = text
		case strings.Contains(href, "f=geo_") && snap.Country == "":
			snap.Country = text
		case strings.Contains(href, "f=exch_") && snap.Exchange == "":
			snap.Exchange = normalizeExchange(text)
		}
	})

	if v, ok := Magnitude(fields["Market Cap"]); ok {
		snap.MarketCap = v
	}
	if v, ok := Magnitude(fields["Shs Outstand"]); ok {
		snap.SharesOutstanding = v
	}
	snap.PERatio = Number(fields["P/E"])
	snap.PSRatio = Number(fields["P/S"])
	snap.PBRatio = Number(fields["P/B"])
	snap.EPSGrowth = Number(fields["EPS this Y"])
	snap.RevenueGrowth = Number(fields["Sales Q/Q"])
	snap.GrossMargin = Number(fields["Gross Margin"])
	snap.OperatingMargin = Number(fields["Oper. Margin"])
	snap.DebtEquity = Number(fields["Debt/Eq"])

	// ETF 페이지는 업종이 "Exchange Traded Fund"이고 보수율 필드가 있음
	_, hasExpense := fields["Expense"]
	snap.IsETF = strings.EqualFold(snap.Industry, "Exchange Traded Fund") || hasExpense

	return snap, nil
}

// Finviz 거래소 약어를 표준 명칭으로
func normalizeExchange(s string) string {
	switch ex := strings.ToUpper(strings.TrimSpace(s)); ex {
	case "NASD":
		return "NASDAQ"
	default:
		return ex
	}
}

func companyName(doc *goquery.Document) string {
	for _, sel := range []string{"h2.quote-header_ticker-wrapper_company", ".quote-header_ticker-wrapper_company a", "table.fullview-title b"} {
		if name := strings.TrimSpace(doc.Find(sel).First().Text()); name != "" {
			return name
		}
	}
	return ""
}

// Number parses "12.34", "12.34%" or "-" (nil)
func Number(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimSuffix(s, "%")
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Magnitude parses suffixed values like "1.23B" or "456.7M"
func Magnitude(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0, false
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'K':
		mult = 1e3
	case 'M':
		mult = 1e6
	case 'B':
		mult = 1e9
	case 'T':
		mult = 1e12
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}
