package hub

// joinPresence and leavePresence maintain the per-conversation sets of
// currently-viewing users. Entries are refcounted so a user with two
// connections into the same conversation stays present until the last one
// leaves; empty sets are deleted, not retained. Callers hold h.mu.
func (h *Hub) joinPresence(conversationID, userID string) {
	if conversationID == "" || userID == "" {
		return
	}
	set := h.presence[conversationID]
	if set == nil {
		set = make(map[string]int)
		h.presence[conversationID] = set
	}
	set[userID]++
}

func (h *Hub) leavePresence(conversationID, userID string) {
	if conversationID == "" || userID == "" {
		return
	}
	set, ok := h.presence[conversationID]
	if !ok {
		return
	}
	if set[userID] <= 1 {
		delete(set, userID)
	} else {
		set[userID]--
	}
	if len(set) == 0 {
		delete(h.presence, conversationID)
	}
}

// ConversationMembers returns the users currently viewing a conversation
// through at least one open connection. No broadcast path depends on this;
// it feeds the stats surface.
func (h *Hub) ConversationMembers(conversationID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.presence[conversationID]
	if !ok {
		return nil
	}
	members := make([]string, 0, len(set))
	for id := range set {
		members = append(members, id)
	}
	return members
}
