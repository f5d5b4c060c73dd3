package notify

import (
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Build registers every channel that has credentials configured.
// hub may be nil when no API server runs. A Telegram bot that fails to
// authorize is skipped with a warning.
func Build(cfg config.NotifyConfig, httpClient *httputil.Client, hub *Hub, log *logger.Logger) []contracts.Notifier {
	var out []contracts.Notifier

	if cfg.DiscordWebhookURL != "" {
		out = append(out, NewDiscord(httpClient, cfg.DiscordWebhookURL, log))
	}
	if cfg.SlackWebhookURL != "" {
		out = append(out, NewSlack(httpClient, cfg.SlackWebhookURL, log))
	}
	if cfg.SMTPHost != "" && cfg.SMTPFrom != "" && len(cfg.SMTPTo) > 0 {
		out = append(out, NewEmail(cfg, log))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, "", log)
		if err != nil {
			log.WithError(err).Warn("Telegram channel disabled")
		} else {
			out = append(out, tg)
		}
	}
	if hub != nil {
		out = append(out, hub)
	}

	names := make([]string, len(out))
	for i, n := range out {
		names[i] = n.Channel()
	}
	log.WithField("channels", names).Info("Notification channels registered")

	return out
}
