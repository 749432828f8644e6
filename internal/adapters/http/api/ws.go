package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/bakeboard/internal/adapters/broadcast"
	"github.com/okian/bakeboard/pkg/logger"
)

const wsWriteTimeout = 10 * time.Second

// WSDependencies covers observer registration on the broadcast hub.
type WSDependencies interface {
	Subscribe(ctx context.Context, conn broadcast.Conn) (string, error)
	Unsubscribe(id string)
}

// WSHandler upgrades observer connections and bridges them onto the hub.
type WSHandler struct {
	deps     WSDependencies
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(deps WSDependencies, log logger.Logger) *WSHandler {
	return &WSHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Observers are read-only dashboards; no credentials cross
			// this socket, so any origin may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// HandleWS handles GET /ws requests. The client receives the current
// snapshot on connect and a fresh one after every mutation; inbound
// messages are drained and ignored.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	conn := &wsConn{ws: ws}
	id, err := h.deps.Subscribe(r.Context(), conn)
	if err != nil {
		h.log.Warn(r.Context(), "observer subscribe failed", logger.Error(err))
		_ = ws.Close()
		return
	}

	// Drain the read side so close frames and pings are processed; any
	// read error means the client went away.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	h.deps.Unsubscribe(id)
}

// wsConn adapts a gorilla connection to the hub's Conn with a write
// deadline and single-writer locking.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
