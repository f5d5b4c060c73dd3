package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/logger"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends a plain text message over SMTP
type Email struct {
	addr     string
	auth     smtp.Auth
	from     string
	to       []string
	sendMail sendMailFunc
	logger   *logger.Logger
}

// NewEmail creates an SMTP channel from the notify config
func NewEmail(cfg config.NotifyConfig, log *logger.Logger) *Email {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &Email{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth:     auth,
		from:     cfg.SMTPFrom,
		to:       cfg.SMTPTo,
		sendMail: smtp.SendMail,
		logger:   log.WithComponent("notify_email"),
	}
}

// Channel implements contracts.Notifier
func (e *Email) Channel() string { return ChannelEmail }

// Send implements contracts.Notifier. net/smtp has no context support,
// so a cancelled context is only checked before dialing.
func (e *Email) Send(ctx context.Context, p contracts.AlertPayload) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if err := e.sendMail(e.addr, e.auth, e.from, e.to, e.render(p)); err != nil {
		e.logger.WithError(err).WithTicker(p.Ticker).Warn("Email delivery failed")
		return false
	}
	return true
}

func (e *Email) render(p contracts.AlertPayload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.to, ", "))
	fmt.Fprintf(&b, "Subject: [tickerscope] %s %s\r\n", alerts.Headline(p.AlertType), p.Ticker)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")

	b.WriteString(p.Message + "\r\n\r\n")
	fmt.Fprintf(&b, "Classification: %s (confidence %.0f%%)\r\n", p.Classification, p.Confidence*100)
	fmt.Fprintf(&b, "Price: $%.2f  Target: %s  Stop: %s\r\n", p.Price, money(p.Target), money(p.StopLoss))
	fmt.Fprintf(&b, "Scores: %s\r\n", scoreLine(p.Scores))
	if p.BullCase != "" {
		fmt.Fprintf(&b, "\r\nBull case: %s\r\n", p.BullCase)
	}
	if p.BearCase != "" {
		fmt.Fprintf(&b, "Bear case: %s\r\n", p.BearCase)
	}
	if p.RuleName != "" {
		fmt.Fprintf(&b, "\r\nRule: %s\r\n", p.RuleName)
	}
	return []byte(b.String())
}
