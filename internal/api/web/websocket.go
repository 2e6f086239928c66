package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12
)

// upgrader accepts any origin; the daemon listens on a trusted network.
//
//nolint:gochecknoglobals // Stateless upgrader shared by all connections.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsConnect streams alarm list snapshots, scheduler decisions and alarm
// actions until the client disconnects.
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WarnKV(h.base, "WebSocket upgrade failed", "error", err)

		return
	}

	defer func() {
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	var (
		alarms           = h.store.SubscribeAlarms(ctx)
		next             = h.store.SubscribeNext(ctx)
		actions, dispose = h.hub.subscribe()
		ping             = time.NewTicker(pingPeriod)
	)

	defer func() {
		ping.Stop()
		dispose()
	}()

	for {
		var message envelope

		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

			continue
		case snapshot, ok := <-alarms:
			if !ok {
				return
			}

			message = envelope{Type: messageAlarms, Data: toListJSON(snapshot, h.prefs.Prefs())}
		case decision, ok := <-next:
			if !ok {
				return
			}

			message = envelope{Type: messageNext, Data: toNextJSON(decision)}
		case action := <-actions:
			message = envelope{Type: messageAction, Data: action}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err = conn.WriteJSON(message); err != nil {
			logger.DebugKV(h.base, "WebSocket write failed", "error", err)

			return
		}
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logger.DebugKV(h.base, "WebSocket client closed", "error", err)

			return
		}
	}
}
