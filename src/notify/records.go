package notify

// NotificationRecord is one durable notification handed to the external
// store. Not retained locally.
type NotificationRecord struct {
	UserID  string         `json:"user_id"`
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// ActivityRecord is a sender-centric audit entry, same hand-off contract as
// NotificationRecord but a distinct endpoint.
type ActivityRecord struct {
	UserID      string         `json:"user_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Visibility  string         `json:"visibility"`
	Data        map[string]any `json:"data"`
}
