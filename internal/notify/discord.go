// Package notify holds the alert delivery channels.
// Each channel makes one delivery attempt and reports success as a bool.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Channel names used in alert rules
const (
	ChannelDiscord   = "discord"
	ChannelSlack     = "slack"
	ChannelEmail     = "email"
	ChannelTelegram  = "telegram"
	ChannelWebSocket = "websocket"
)

// Discord posts embeds to a webhook
type Discord struct {
	httpClient *httputil.Client
	webhookURL string
	logger     *logger.Logger
}

type discordMessage struct {
	Content string         `json:"content"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// NewDiscord creates a Discord webhook channel
func NewDiscord(httpClient *httputil.Client, webhookURL string, log *logger.Logger) *Discord {
	return &Discord{
		httpClient: httpClient,
		webhookURL: webhookURL,
		logger:     log.WithComponent("notify_discord"),
	}
}

// Channel implements contracts.Notifier
func (d *Discord) Channel() string { return ChannelDiscord }

// Send implements contracts.Notifier
func (d *Discord) Send(ctx context.Context, p contracts.AlertPayload) bool {
	if _, err := d.httpClient.PostJSON(ctx, d.webhookURL, discordPayload(p)); err != nil {
		d.logger.WithError(err).WithTicker(p.Ticker).Warn("Discord delivery failed")
		return false
	}
	return true
}

func discordPayload(p contracts.AlertPayload) discordMessage {
	fields := []discordField{
		{Name: "Price", Value: fmt.Sprintf("$%.2f", p.Price), Inline: true},
		{Name: "Target", Value: money(p.Target), Inline: true},
		{Name: "Stop", Value: money(p.StopLoss), Inline: true},
		{Name: "Scores", Value: scoreLine(p.Scores), Inline: false},
		{Name: "Confidence", Value: fmt.Sprintf("%.0f%%", p.Confidence*100), Inline: true},
	}
	if p.BullCase != "" {
		fields = append(fields, discordField{Name: "Bull case", Value: p.BullCase})
	}
	if p.BearCase != "" {
		fields = append(fields, discordField{Name: "Bear case", Value: p.BearCase})
	}

	desc := string(p.Classification)
	if p.RuleName != "" {
		desc += " · rule: " + p.RuleName
	}

	return discordMessage{
		Content: p.Message,
		Embeds: []discordEmbed{{
			Title:       fmt.Sprintf("%s: %s", alerts.Headline(p.AlertType), p.Ticker),
			Description: desc,
			Color:       colorFor(p.AlertType),
			Fields:      fields,
			Timestamp:   p.GeneratedAt.UTC().Format(time.RFC3339),
		}},
	}
}

func colorFor(t contracts.AlertType) int {
	switch t {
	case contracts.AlertRunner:
		return 0x2ECC71
	case contracts.AlertValue:
		return 0x3498DB
	case contracts.AlertBoth:
		return 0x9B59B6
	case contracts.AlertPumpWarning:
		return 0xE74C3C
	default:
		return 0x95A5A6
	}
}

func money(v float64) string {
	if v <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", v)
}

func scoreLine(s contracts.ScoreSet) string {
	return fmt.Sprintf("attention %d · momentum %d · fundamentals %d · risk %d",
		s.Attention, s.Momentum, s.Fundamentals, s.Risk)
}
