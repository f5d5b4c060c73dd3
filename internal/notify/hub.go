package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// wsMessage is the envelope pushed to dashboard clients
type wsMessage struct {
	Type    string                 `json:"type"`
	Payload contracts.AlertPayload `json:"payload"`
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans alerts out to connected WebSocket clients
// ⭐ SSOT: 대시보드 실시간 알림은 여기서만
type Hub struct {
	upgrader websocket.Upgrader
	clients  map[*wsClient]struct{}
	mu       sync.RWMutex
	logger   *logger.Logger
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
		logger:  log.WithComponent("notify_ws"),
	}
}

// Channel implements contracts.Notifier
func (h *Hub) Channel() string { return ChannelWebSocket }

// Send implements contracts.Notifier. Delivery counts as confirmed when
// at least one client received the frame.
func (h *Hub) Send(ctx context.Context, p contracts.AlertPayload) bool {
	if ctx.Err() != nil {
		return false
	}

	data, err := json.Marshal(wsMessage{Type: "alert", Payload: p})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal alert")
		return false
	}

	delivered := 0
	for _, c := range h.snapshot() {
		if err := c.write(websocket.TextMessage, data); err != nil {
			h.logger.WithError(err).Debug("Dropping client after failed write")
			h.remove(c)
			continue
		}
		delivered++
	}
	return delivered > 0
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the connection until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.WithField("clients", h.Clients()).Debug("Client connected")

	done := make(chan struct{})
	go h.pingLoop(c, done)

	// 클라이언트 메시지는 무시, 연결 종료 감지용
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	h.remove(c)
}

// Close disconnects every client
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"))
		h.remove(c)
	}
}

func (h *Hub) pingLoop(c *wsClient, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) snapshot() []*wsClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}
