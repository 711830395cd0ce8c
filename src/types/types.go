package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tags of the inbound payloads the relay understands. Anything else is
// passed through unchanged as an Other variant.
const (
	TagTyping   = "typing_update"
	TagMessage  = "new_message"
	TagPresence = "user_presence"
	TagFollow   = "follow"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadText() ([]byte, error)
	WriteJSON(v any) error
	Ping() error
	Close() error
}

// Sender carries the display fields attached to a chat message.
type Sender struct {
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName picks the best available name for notification titles,
// falling back to the given identifier when no name was supplied.
func (s Sender) DisplayName(fallback string) string {
	if s.FirstName != "" {
		return s.FirstName
	}
	if s.Username != "" {
		return s.Username
	}
	return fallback
}

// ChatMessage is the payload of a new_message event.
type ChatMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
	Sender         Sender `json:"sender"`
}

// TypingUpdate signals that a user is typing in a conversation.
type TypingUpdate struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId,omitempty"`
}

// PresenceUpdate announces a user going online or offline. It doubles as
// the outbound user_presence envelope, with Type filled in.
type PresenceUpdate struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// FollowEvent is a social-graph change relayed to the followed user.
// Only action "follow" triggers any behavior.
type FollowEvent struct {
	Action       string `json:"action"`
	FollowedID   string `json:"followedId"`
	FollowerID   string `json:"followerId"`
	FollowerName string `json:"followerName,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// Inbound is one decoded client payload. For the known tags exactly one
// variant pointer is set; Raw always holds the original fields (with the
// session user injected) so passthrough broadcasts keep the wire shape.
type Inbound struct {
	Tag      string
	Raw      map[string]any
	Typing   *TypingUpdate
	Message  *ChatMessage
	Presence *PresenceUpdate
	Follow   *FollowEvent
}

var errNoTag = errors.New("payload has no type tag")

// Decode parses a raw text payload into its tagged variant. When the payload
// omits userId but the session knows one, it is injected before variant
// decoding. Unknown tags yield a passthrough variant; undecodable payloads
// and payloads without a type tag are errors, dropped by the caller.
func Decode(payload []byte, sessionUserID string) (*Inbound, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	tag, _ := raw["type"].(string)
	if tag == "" {
		return nil, errNoTag
	}
	if _, ok := raw["userId"]; !ok && sessionUserID != "" {
		raw["userId"] = sessionUserID
	}

	in := &Inbound{Tag: tag, Raw: raw}
	switch tag {
	case TagTyping:
		var t TypingUpdate
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		if t.UserID == "" {
			t.UserID = sessionUserID
		}
		in.Typing = &t
	case TagMessage:
		var w struct {
			Message ChatMessage `json:"message"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		if w.Message.SenderID == "" {
			w.Message.SenderID = sessionUserID
		}
		in.Message = &w.Message
	case TagPresence:
		var p PresenceUpdate
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		if p.UserID == "" {
			p.UserID = sessionUserID
		}
		in.Presence = &p
	case TagFollow:
		var f FollowEvent
		if err := json.Unmarshal(payload, &f); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		in.Follow = &f
	}
	return in, nil
}
