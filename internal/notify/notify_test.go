package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
)

func samplePayload() contracts.AlertPayload {
	return contracts.AlertPayload{
		Ticker:         "SNDL",
		AlertType:      contracts.AlertRunner,
		Classification: contracts.ClassRunner,
		Confidence:     0.72,
		Scores:         contracts.ScoreSet{Attention: 90, Momentum: 75, Fundamentals: 50, Risk: 35},
		Price:          2.15,
		Target:         2.80,
		StopLoss:       1.93,
		BullCase:       "volume <breakout>",
		BearCase:       "dilution risk",
		RuleName:       "hot runners",
		Message:        "RUNNER SNDL [runner] $2.15",
		GeneratedAt:    time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
	}
}

func testHTTP() *httputil.Client {
	return httputil.New(logger.Nop(), time.Second).DisableRetry()
}

// captureServer records the last JSON body and answers with status
func captureServer(t *testing.T, status int, got *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, got)
		w.WriteHeader(status)
	}))
}

func TestDiscord_Send(t *testing.T) {
	var got map[string]interface{}
	srv := captureServer(t, http.StatusNoContent, &got)
	defer srv.Close()

	d := NewDiscord(testHTTP(), srv.URL, logger.Nop())
	assert.Equal(t, ChannelDiscord, d.Channel())
	require.True(t, d.Send(context.Background(), samplePayload()))

	assert.Equal(t, "RUNNER SNDL [runner] $2.15", got["content"])
	embeds := got["embeds"].([]interface{})
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]interface{})
	assert.Equal(t, "RUNNER: SNDL", embed["title"])
	assert.Equal(t, float64(0x2ECC71), embed["color"])
	assert.Equal(t, "2026-03-02T15:00:00Z", embed["timestamp"])
}

func TestDiscord_SendFailure(t *testing.T) {
	var got map[string]interface{}
	srv := captureServer(t, http.StatusBadRequest, &got)
	defer srv.Close()

	assert.False(t, NewDiscord(testHTTP(), srv.URL, logger.Nop()).Send(context.Background(), samplePayload()))
}

func TestSlack_Send(t *testing.T) {
	var got map[string]interface{}
	srv := captureServer(t, http.StatusOK, &got)
	defer srv.Close()

	s := NewSlack(testHTTP(), srv.URL, logger.Nop())
	require.True(t, s.Send(context.Background(), samplePayload()))

	assert.Equal(t, "RUNNER SNDL [runner] $2.15", got["text"])
	blocks := got["blocks"].([]interface{})
	require.Len(t, blocks, 2)
	section := blocks[1].(map[string]interface{})["text"].(map[string]interface{})
	assert.Contains(t, section["text"], "*Target* $2.80")
	assert.Contains(t, section["text"], "dilution risk")
}

func TestEmail_Send(t *testing.T) {
	cfg := config.NotifyConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		SMTPFrom: "scope@example.com",
		SMTPTo:   []string{"a@example.com", "b@example.com"},
	}
	e := NewEmail(cfg, logger.Nop())

	var gotAddr string
	var gotTo []string
	var gotMsg string
	e.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.True(t, e.Send(context.Background(), samplePayload()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, cfg.SMTPTo, gotTo)
	assert.Contains(t, gotMsg, "Subject: [tickerscope] RUNNER SNDL\r\n")
	assert.Contains(t, gotMsg, "Rule: hot runners")

	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.False(t, e.Send(context.Background(), samplePayload()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, e.Send(ctx, samplePayload()))
}

func TestTelegram_Send(t *testing.T) {
	var sentText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"scope","username":"scope_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			_ = r.ParseForm()
			sentText = r.FormValue("text")
			assert.Equal(t, "42", r.FormValue("chat_id"))
			assert.Equal(t, "HTML", r.FormValue("parse_mode"))
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	tg, err := NewTelegram("TOKEN", 42, srv.URL+"/bot%s/%s", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, ChannelTelegram, tg.Channel())

	require.True(t, tg.Send(context.Background(), samplePayload()))
	assert.Contains(t, sentText, "<b>RUNNER: SNDL</b>")
	assert.Contains(t, sentText, "volume &lt;breakout&gt;")

	_, err = NewTelegram("", 42, srv.URL+"/bot%s/%s", logger.Nop())
	assert.Error(t, err)
}

func TestHub_Send(t *testing.T) {
	hub := NewHub(logger.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	assert.False(t, hub.Send(context.Background(), samplePayload()), "no clients connected")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.True(t, hub.Send(context.Background(), samplePayload()))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "alert", msg.Type)
	assert.Equal(t, "SNDL", msg.Payload.Ticker)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())
}

func TestBuild(t *testing.T) {
	hub := NewHub(logger.Nop())
	got := Build(config.NotifyConfig{
		DiscordWebhookURL: "http://discord.invalid/hook",
		SMTPHost:          "smtp.example.com",
		SMTPFrom:          "x@example.com",
	}, testHTTP(), hub, logger.Nop())

	var names []string
	for _, n := range got {
		names = append(names, n.Channel())
	}
	assert.Equal(t, []string{ChannelDiscord, ChannelWebSocket}, names, "email needs recipients")

	assert.Empty(t, Build(config.NotifyConfig{}, testHTTP(), nil, logger.Nop()))
}
