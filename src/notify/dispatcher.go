package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/parleychat/relay/src/metrics"
	"github.com/parleychat/relay/src/types"
)

// Directory is the external read-only view of conversation membership.
type Directory interface {
	// ActiveParticipants returns the user ids currently party to a
	// conversation, departed members excluded.
	ActiveParticipants(ctx context.Context, conversationID string) ([]string, error)
}

var errNoBaseURL = errors.New("notification API base URL not configured")

// Dispatcher persists notification and activity records to the external
// API. Every call is best effort: failures are logged and swallowed so the
// connection path never stalls or fails because persistence did.
type Dispatcher struct {
	directory Directory
	baseURL   string
	client    *fasthttp.Client
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// New creates a dispatcher. An empty baseURL makes every persistence call
// fail immediately; that is logged per call, never fatal.
func New(directory Directory, baseURL string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		directory: directory,
		baseURL:   baseURL,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// NotifyNewMessage looks up the conversation's active participants and
// persists one notification per recipient plus one activity entry for the
// sender. The lookup is synchronous and a failed lookup aborts the whole
// pass; the persistence calls run independently, so one recipient's failure
// never blocks a sibling's.
func (d *Dispatcher) NotifyNewMessage(ctx context.Context, msg *types.ChatMessage) {
	participants, err := d.directory.ActiveParticipants(ctx, msg.ConversationID)
	if err != nil {
		d.logger.Error().Err(err).
			Str("conversation_id", msg.ConversationID).
			Msg("participant lookup failed, skipping notifications")
		return
	}

	senderName := msg.Sender.DisplayName(msg.SenderID)
	recipients := 0
	for _, p := range participants {
		if p == msg.SenderID {
			continue
		}
		recipients++
		rec := NotificationRecord{
			UserID:  p,
			Type:    "message",
			Title:   "New message from " + senderName,
			Message: msg.Content,
			Data: map[string]any{
				"conversation_id": msg.ConversationID,
				"sender_id":       msg.SenderID,
				"message_id":      msg.ID,
			},
		}
		d.spawn(func() { d.SaveNotification(rec) })
	}

	activity := ActivityRecord{
		UserID:      msg.SenderID,
		Type:        "message_sent",
		Title:       "Sent a message",
		Description: fmt.Sprintf("Sent a message in conversation %s to %d recipient(s)", msg.ConversationID, recipients),
		Category:    "social",
		Visibility:  "private",
		Data: map[string]any{
			"conversation_id": msg.ConversationID,
			"message_id":      msg.ID,
			"recipients":      recipients,
		},
	}
	d.spawn(func() { d.SaveUserActivity(activity) })
}

// NotifyFollow persists a single follow notification for the followed user.
// Callers filter on action; this always records.
func (d *Dispatcher) NotifyFollow(ctx context.Context, ev *types.FollowEvent) {
	name := ev.FollowerName
	if name == "" {
		name = ev.FollowerID
	}
	rec := NotificationRecord{
		UserID:  ev.FollowedID,
		Type:    "follow",
		Title:   "New follower",
		Message: name + " started following you",
		Data: map[string]any{
			"follower_id":   ev.FollowerID,
			"follower_name": name,
		},
	}
	d.spawn(func() { d.SaveNotification(rec) })
}

func (d *Dispatcher) spawn(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

// Wait blocks until all in-flight persistence calls settle. Used by
// shutdown and tests.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// SaveNotification hands one record to the external notification store.
func (d *Dispatcher) SaveNotification(rec NotificationRecord) {
	if err := d.post("/api/notifications", rec); err != nil {
		metrics.NotifyCalls.WithLabelValues("notifications", "error").Inc()
		d.logger.Error().Err(err).
			Str("user_id", rec.UserID).
			Str("type", rec.Type).
			Msg("notification persist failed")
		return
	}
	metrics.NotifyCalls.WithLabelValues("notifications", "ok").Inc()
}

// SaveUserActivity hands one audit entry to the external activity store.
func (d *Dispatcher) SaveUserActivity(rec ActivityRecord) {
	if err := d.post("/api/user-activity", rec); err != nil {
		metrics.NotifyCalls.WithLabelValues("user_activity", "error").Inc()
		d.logger.Error().Err(err).
			Str("user_id", rec.UserID).
			Msg("activity persist failed")
		return
	}
	metrics.NotifyCalls.WithLabelValues("user_activity", "ok").Inc()
}

func (d *Dispatcher) post(path string, body any) error {
	if d.baseURL == "" {
		return errNoBaseURL
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(d.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	// Marks the call as server-originated for the downstream API.
	req.Header.Set("X-Internal-Request", "true")
	req.SetBody(payload)

	if err := d.client.Do(req, resp); err != nil {
		return err
	}
	if s := resp.StatusCode(); s < 200 || s >= 300 {
		return fmt.Errorf("%s returned status %d", path, s)
	}
	return nil
}
