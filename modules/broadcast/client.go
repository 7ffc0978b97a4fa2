package broadcast

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const writeWait = 10 * time.Second

// Conn is the part of a WebSocket connection the writer needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one connection's outbound side: a bounded queue drained by a
// single writer goroutine.
type Client struct {
	ID         string
	conn       Conn
	send       chan []byte
	registered chan struct{}
	closeOnce  sync.Once
}

// NewClient creates a client with a send queue of the given size.
func NewClient(id string, conn Conn, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Client{
		ID:         id,
		conn:       conn,
		send:       make(chan []byte, bufferSize),
		registered: make(chan struct{}),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// WritePump drains the send queue to the socket and pings the peer every
// pingInterval. It returns when the queue is closed or a write fails, closing
// the connection either way.
func (c *Client) WritePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
