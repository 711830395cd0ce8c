package hub

import "github.com/parleychat/relay/src/metrics"

// snapshot returns the current clients under a read lock. Broadcasts iterate
// the snapshot so concurrent removals cannot invalidate the loop.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// ForEach visits a snapshot of the registered clients. A visited client may
// already be gone by the time fn runs; sends to it simply fail in isolation.
func (h *Hub) ForEach(fn func(*Client)) {
	for _, c := range h.snapshot() {
		fn(c)
	}
}

// send delivers one envelope to one client. A failed send is logged and
// never aborts the surrounding fan-out; removal of broken clients is left
// to the close and reap paths.
func (h *Hub) send(c *Client, envelope any) {
	if !c.Enqueue(envelope) {
		metrics.EnvelopesDropped.Inc()
		h.logger.Warn().
			Str("client_id", c.ID).
			Msg("send buffer full or closed, dropping envelope")
	}
}

// BroadcastToConversation delivers an envelope to every client viewing the
// given conversation, except exclude. A no-op for an empty conversation id.
func (h *Hub) BroadcastToConversation(conversationID string, envelope any, exclude *Client) {
	if conversationID == "" {
		return
	}
	for _, c := range h.snapshot() {
		if c == exclude || c.ConversationID != conversationID {
			continue
		}
		h.send(c, envelope)
	}
}

// BroadcastToAll delivers an envelope to every registered client except
// exclude.
func (h *Hub) BroadcastToAll(envelope any, exclude *Client) {
	for _, c := range h.snapshot() {
		if c == exclude {
			continue
		}
		h.send(c, envelope)
	}
}

// SendTo delivers an envelope directly to one client.
func (h *Hub) SendTo(c *Client, envelope any) {
	h.send(c, envelope)
}

// FindByUser returns the first open connection whose session user matches,
// or nil. First found: iteration order is unspecified when a user holds
// several connections.
func (h *Hub) FindByUser(userID string) *Client {
	if userID == "" {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.UserID == userID {
			return c
		}
	}
	return nil
}
