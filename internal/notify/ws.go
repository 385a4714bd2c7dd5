package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades the request and streams the session's notifications as
// JSON text frames until the client goes away or the hub closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) error {
	l := logging.FromContext(r.Context()).With("component", "notify", "session_id", sessionID)

	sub, err := h.Subscribe(sessionID)
	if err != nil {
		http.Error(w, "notifications unavailable", http.StatusServiceUnavailable)
		return err
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn("ws_upgrade_error", "error", err)
		return err
	}
	defer conn.Close()

	gone := make(chan struct{})
	go readPump(conn, gone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return nil
		case v, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
				return nil
			}
			if err := conn.WriteJSON(v); err != nil {
				l.Warn("ws_write_error", "error", err)
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
func readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
