package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"DriftWatch/internal/domain/models"
	"DriftWatch/internal/service/metrics"
	xlogger "DriftWatch/pkg/logger"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AlertHub broadcasts saved alerts to connected websocket clients.
// It plugs into the monitor as an alert publisher, so dashboards see
// new alerts without polling /api/alerts.
type AlertHub struct {
	logger *xlogger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewAlertHub(logger *xlogger.Logger) *AlertHub {
	metrics.Register()
	return &AlertHub{
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Serve upgrades the request and keeps the connection until the client
// goes away. Clients are write-only; inbound frames are drained and
// dropped.
func (h *AlertHub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade_error", xlogger.Error(err))
		return nil
	}

	h.add(conn)
	h.logger.Info("ws client_connected", xlogger.String("remote", conn.RemoteAddr().String()))

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// PublishAlert fans the alert out to every connected client. Slow or
// dead clients are dropped rather than blocking the check path.
func (h *AlertHub) PublishAlert(_ context.Context, alert *models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		targets = append(targets, conn)
	}
	h.mu.Unlock()

	for _, conn := range targets {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("ws write_error", xlogger.Error(err))
			h.remove(conn)
		}
	}

	metrics.WSBroadcasts.Inc()
	return nil
}

// Close disconnects all clients.
func (h *AlertHub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.remove(conn)
	}
}

func (h *AlertHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	metrics.WSClients.Inc()
}

// remove is safe to call twice for the same conn; the gauge only moves
// when the conn was still a member.
func (h *AlertHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, member := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()

	if member {
		metrics.WSClients.Dec()
		conn.Close()
	}
}
