package ws

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	sendBuffer     = 256
	writeDeadline  = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 64 * 1024
)

// Client is one live socket session. The user identity is captured at
// connect time and never re-derived, so teardown of a stale connection
// cannot clobber a newer registration for the same user.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan Envelope

	mu     sync.Mutex
	closed bool
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan Envelope, sendBuffer),
	}
}

func (c *Client) UserID() string { return c.userID }

// Enqueue hands an event to the write pump. Delivery is best-effort: a
// client whose buffer is full or has already disconnected loses the
// event. Enqueue and Close share a lock so a route racing a disconnect
// is rejected instead of sending on a closed channel.
func (c *Client) Enqueue(env Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings. Runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
