package fanout

import (
	"context"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// WebsocketSender adapts a websocket connection to the Sender interface.
// Closing is idempotent from the peer's perspective; a second Close after
// the peer hung up is a no-op error the manager ignores.
type WebsocketSender struct {
	conn *websocket.Conn
}

// NewWebsocketSender wraps an accepted websocket connection.
func NewWebsocketSender(conn *websocket.Conn) *WebsocketSender {
	return &WebsocketSender{conn: conn}
}

// Send writes v as a JSON text frame with a bounded write deadline.
func (w *WebsocketSender) Send(ctx context.Context, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, w.conn, v)
}

// Close shuts the websocket down with a normal closure status.
func (w *WebsocketSender) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}
