package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Telegram sends alerts to one chat through the Bot API
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *logger.Logger
}

// NewTelegram authorizes the bot against endpoint
// (tgbotapi.APIEndpoint in production).
func NewTelegram(token string, chatID int64, endpoint string, log *logger.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}

	l := log.WithComponent("notify_telegram")
	l.WithField("bot", api.Self.UserName).Info("Telegram bot authorized")

	return &Telegram{api: api, chatID: chatID, logger: l}, nil
}

// Channel implements contracts.Notifier
func (t *Telegram) Channel() string { return ChannelTelegram }

// Send implements contracts.Notifier
func (t *Telegram) Send(ctx context.Context, p contracts.AlertPayload) bool {
	if ctx.Err() != nil {
		return false
	}

	msg := tgbotapi.NewMessage(t.chatID, telegramText(p))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.api.Send(msg); err != nil {
		t.logger.WithError(err).WithTicker(p.Ticker).Warn("Telegram delivery failed")
		return false
	}
	return true
}

func telegramText(p contracts.AlertPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s: %s</b> (%s)\n", alerts.Headline(p.AlertType), p.Ticker, p.Classification)
	fmt.Fprintf(&b, "Price $%.2f · Target %s · Stop %s\n", p.Price, money(p.Target), money(p.StopLoss))
	fmt.Fprintf(&b, "%s\n", scoreLine(p.Scores))
	if p.BullCase != "" {
		fmt.Fprintf(&b, "\n🟢 %s", escapeHTML(p.BullCase))
	}
	if p.BearCase != "" {
		fmt.Fprintf(&b, "\n🔴 %s", escapeHTML(p.BearCase))
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }
