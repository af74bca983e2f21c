package fanout

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is the send capability the registry requires from a
// subscriber connection. The registry never sees the wire protocol;
// the upgrade handshake happens before registration.
type Transport interface {
	// SendMessage writes one serialized message. The write must be
	// bounded by the transport's own timeout.
	SendMessage(data []byte) error

	// Close tears down the underlying connection.
	Close() error
}

// DefaultWriteTimeout bounds a single WebSocket write so a hung peer
// cannot stall its writer goroutine indefinitely.
const DefaultWriteTimeout = 5 * time.Second

// WSTransport adapts a gorilla WebSocket connection to Transport.
type WSTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	// Write serialization: gorilla allows at most one concurrent writer.
	writeMu sync.Mutex
}

// NewWSTransport wraps an upgraded connection. A timeout <= 0 falls
// back to DefaultWriteTimeout.
func NewWSTransport(conn *websocket.Conn, writeTimeout time.Duration) *WSTransport {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &WSTransport{conn: conn, writeTimeout: writeTimeout}
}

// SendMessage writes one text frame with a write deadline.
func (t *WSTransport) SendMessage(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and tears down the connection.
func (t *WSTransport) Close() error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return t.conn.Close()
}
