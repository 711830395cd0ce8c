package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/parleychat/relay/src/metrics"
	"github.com/parleychat/relay/src/types"
)

// InboundHandler processes one raw payload from a registered client.
// Defined here to avoid a circular import with the router package.
type InboundHandler func(c *Client, payload []byte)

// Hub owns the live connection registry and the conversation presence sets.
// It is the single source of truth for who is connected as whom, viewing
// what.
type Hub struct {
	clients  map[string]*Client
	presence map[string]map[string]int // conversation -> userID -> open connections

	register   chan *Client
	unregister chan *Client

	handler InboundHandler
	mu      sync.RWMutex
	logger  zerolog.Logger
	done    chan struct{}
}

// New creates a new Hub instance.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		presence:   make(map[string]map[string]int),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With().Str("component", "hub").Logger(),
		done:       make(chan struct{}),
	}
}

// SetHandler attaches the inbound message handler. Call before any client
// starts reading.
func (h *Hub) SetHandler(fn InboundHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = fn
}

// Run starts the registration loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c, true)
		case <-h.done:
			return
		}
	}
}

// Stop halts the registration loop and the reaper.
func (h *Hub) Stop() { close(h.done) }

// Register queues a client for registration.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister queues a client for removal with an offline announcement.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		h.mu.Unlock()
		// Double registration of one connection is a programming error.
		h.logger.Error().Str("client_id", c.ID).Msg("duplicate registration ignored")
		return
	}
	h.clients[c.ID] = c
	h.joinPresence(c.ConversationID, c.UserID)
	h.mu.Unlock()

	metrics.OpenConnections.Inc()
	h.logger.Info().
		Str("client_id", c.ID).
		Str("user_id", c.UserID).
		Str("conversation_id", c.ConversationID).
		Msg("client registered")

	if c.UserID != "" {
		h.BroadcastToAll(types.OnlinePresence(c.UserID), c)
	}
}

// removeClient drops a client from the registry and the presence sets.
// announce controls the offline presence broadcast: explicit closes
// announce, reaped connections do not.
func (h *Hub) removeClient(c *Client, announce bool) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	h.leavePresence(c.ConversationID, c.UserID)
	h.mu.Unlock()

	c.Close()
	metrics.OpenConnections.Dec()
	h.logger.Info().
		Str("client_id", c.ID).
		Str("user_id", c.UserID).
		Msg("client unregistered")

	if announce && c.UserID != "" {
		h.BroadcastToAll(types.OfflinePresence(c.UserID), c)
	}
}

// handleInbound hands one payload to the attached handler. Called from the
// client read pump, so one connection's messages are processed in arrival
// order.
func (h *Hub) handleInbound(c *Client, payload []byte) {
	h.mu.RLock()
	fn := h.handler
	h.mu.RUnlock()

	if fn == nil {
		h.logger.Debug().Str("client_id", c.ID).Msg("no inbound handler")
		return
	}
	fn(c, payload)
}
