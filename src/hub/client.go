package hub

import (
	"sync"
	"time"

	"github.com/parleychat/relay/src/types"
)

const sendBuffer = 256

// Client wraps one WebSocket connection together with its session metadata.
// The session fields come from the connection URL and are fixed for the
// connection's lifetime; either may be empty.
type Client struct {
	ID             string
	UserID         string
	ConversationID string
	ConnectedAt    time.Time

	conn types.Conn
	hub  *Hub
	send chan any

	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewClient creates a client wrapper for a freshly accepted connection.
func NewClient(id, userID, conversationID string, conn types.Conn, h *Hub) *Client {
	return &Client{
		ID:             id,
		UserID:         userID,
		ConversationID: conversationID,
		ConnectedAt:    time.Now(),
		conn:           conn,
		hub:            h,
		send:           make(chan any, sendBuffer),
		done:           make(chan struct{}),
	}
}

// ReadPump reads text payloads and hands each one to the hub's inbound
// handler, one at a time. Returns when the connection errors or closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		payload, err := c.conn.ReadText()
		if err != nil {
			return
		}
		c.hub.handleInbound(c, payload)
	}
}

// WritePump drains the send buffer to the connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Enqueue pushes an envelope onto the send buffer without blocking.
// Reports false when the buffer is full or the client is closed.
func (c *Client) Enqueue(env any) bool {
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

// Alive reports whether the underlying channel still answers a ping.
func (c *Client) Alive() bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false
	}
	return c.conn.Ping() == nil
}

// Close signals the pumps to stop. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
		close(c.send)
	}
}
