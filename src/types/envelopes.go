package types

import "time"

// Outbound envelope type tags.
const (
	EnvPresence     = "user_presence"
	EnvNotification = "new_notification"
	EnvMessageRelay = "new_message"
	EnvLegacyFollow = "follow_notification"
)

// Notification is the inner payload of a new_notification envelope.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
	Category  string         `json:"category"`
	Priority  string         `json:"priority"`
}

// NotificationEnvelope delivers a notification to a live connection.
type NotificationEnvelope struct {
	Type         string       `json:"type"`
	Notification Notification `json:"notification"`
}

// MessageRelay is the in-context copy of a new message delivered to
// connections viewing the same conversation.
type MessageRelay struct {
	Type           string `json:"type"`
	SenderName     string `json:"senderName"`
	Content        string `json:"content"`
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

// FollowNotification is the flat follow envelope older clients listen for.
type FollowNotification struct {
	Type         string `json:"type"`
	FollowerID   string `json:"followerId"`
	FollowedID   string `json:"followedId"`
	FollowerName string `json:"followerName"`
	Action       string `json:"action"`
	Timestamp    string `json:"timestamp"`
}

// OnlinePresence builds the synthetic envelope broadcast when a user's
// connection opens.
func OnlinePresence(userID string) PresenceUpdate {
	return PresenceUpdate{Type: EnvPresence, UserID: userID, IsOnline: true}
}

// OfflinePresence builds the synthetic envelope broadcast when a user's
// connection closes.
func OfflinePresence(userID string) PresenceUpdate {
	return PresenceUpdate{Type: EnvPresence, UserID: userID, IsOnline: false}
}
