package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Slack posts mrkdwn blocks to an incoming webhook
type Slack struct {
	httpClient *httputil.Client
	webhookURL string
	logger     *logger.Logger
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewSlack creates a Slack webhook channel
func NewSlack(httpClient *httputil.Client, webhookURL string, log *logger.Logger) *Slack {
	return &Slack{
		httpClient: httpClient,
		webhookURL: webhookURL,
		logger:     log.WithComponent("notify_slack"),
	}
}

// Channel implements contracts.Notifier
func (s *Slack) Channel() string { return ChannelSlack }

// Send implements contracts.Notifier
func (s *Slack) Send(ctx context.Context, p contracts.AlertPayload) bool {
	if _, err := s.httpClient.PostJSON(ctx, s.webhookURL, slackPayload(p)); err != nil {
		s.logger.WithError(err).WithTicker(p.Ticker).Warn("Slack delivery failed")
		return false
	}
	return true
}

func slackPayload(p contracts.AlertPayload) slackMessage {
	var body strings.Builder
	fmt.Fprintf(&body, "*Price* $%.2f  *Target* %s  *Stop* %s\n", p.Price, money(p.Target), money(p.StopLoss))
	fmt.Fprintf(&body, "*Scores* %s\n", scoreLine(p.Scores))
	fmt.Fprintf(&body, "*Confidence* %.0f%%", p.Confidence*100)
	if p.BullCase != "" {
		fmt.Fprintf(&body, "\n:chart_with_upwards_trend: %s", p.BullCase)
	}
	if p.BearCase != "" {
		fmt.Fprintf(&body, "\n:warning: %s", p.BearCase)
	}

	return slackMessage{
		Text: p.Message,
		Blocks: []slackBlock{
			{Type: "header", Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("%s: %s", alerts.Headline(p.AlertType), p.Ticker)}},
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: body.String()}},
		},
	}
}
