package hub

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Conversations returns conversation ids with their current viewer counts.
func (h *Hub) Conversations() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	result := make(map[string]int, len(h.presence))
	for id, set := range h.presence {
		result[id] = len(set)
	}
	return result
}

// Client returns the registered client with the given id, or nil.
func (h *Hub) Client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

// CloseAll force-closes every registered connection without offline
// announcements. Used during shutdown.
func (h *Hub) CloseAll() {
	for _, c := range h.snapshot() {
		h.removeClient(c, false)
	}
}
