package router

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parleychat/relay/src/hub"
	"github.com/parleychat/relay/src/metrics"
	"github.com/parleychat/relay/src/types"
)

// Notifier triggers off-path notification persistence for events whose
// recipients may be offline.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, msg *types.ChatMessage)
	NotifyFollow(ctx context.Context, ev *types.FollowEvent)
}

// Router classifies inbound payloads by type tag and dispatches them to the
// hub's fan-out paths and the notification pipeline.
type Router struct {
	hub      *hub.Hub
	notifier Notifier
	logger   zerolog.Logger
}

// New creates a router over the given hub and notifier. Attach it with
// hub.SetHandler(r.Handle).
func New(h *hub.Hub, n Notifier, logger zerolog.Logger) *Router {
	return &Router{
		hub:      h,
		notifier: n,
		logger:   logger.With().Str("component", "router").Logger(),
	}
}

// Handle processes one raw payload from a client.
func (r *Router) Handle(c *hub.Client, payload []byte) {
	in, err := types.Decode(payload, c.UserID)
	if err != nil {
		metrics.MessagesDiscarded.Inc()
		r.logger.Debug().Err(err).Str("client_id", c.ID).Msg("dropping undecodable payload")
		return
	}
	metrics.MessagesRouted.WithLabelValues(in.Tag).Inc()

	switch in.Tag {
	case types.TagTyping:
		r.hub.BroadcastToConversation(in.Typing.ConversationID, in.Raw, c)
	case types.TagPresence:
		r.hub.BroadcastToAll(in.Raw, c)
	case types.TagMessage:
		r.handleNewMessage(c, in)
	case types.TagFollow:
		r.handleFollow(c, in.Follow)
	default:
		// Unrecognized types pass through unchanged.
		r.hub.BroadcastToAll(in.Raw, c)
	}
}

func (r *Router) handleNewMessage(c *hub.Client, in *types.Inbound) {
	msg := in.Message

	// Blocks through the participant lookup only; the persistence calls
	// run on their own goroutines inside the dispatcher.
	r.notifier.NotifyNewMessage(context.Background(), msg)

	senderName := msg.Sender.DisplayName(msg.SenderID)
	relay := types.MessageRelay{
		Type:           types.EnvMessageRelay,
		SenderName:     senderName,
		Content:        msg.Content,
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
	}

	// Live notifications go to everyone online. The relay copy goes only
	// to clients viewing the conversation. Two distinct audiences.
	r.hub.ForEach(func(peer *hub.Client) {
		if peer == c {
			return
		}
		r.hub.SendTo(peer, types.NotificationEnvelope{
			Type:         types.EnvNotification,
			Notification: messageNotification(peer.UserID, msg, senderName),
		})
		if peer.ConversationID == msg.ConversationID {
			r.hub.SendTo(peer, relay)
		}
	})

	// The raw inbound payload also goes to the conversation's viewers.
	r.hub.BroadcastToConversation(msg.ConversationID, in.Raw, c)
}

func messageNotification(recipientID string, msg *types.ChatMessage, senderName string) types.Notification {
	return types.Notification{
		ID:      uuid.NewString(),
		UserID:  recipientID,
		Type:    "message",
		Title:   "New message from " + senderName,
		Message: msg.Content,
		Data: map[string]any{
			"conversation_id": msg.ConversationID,
			"sender_id":       msg.SenderID,
			"message_id":      msg.ID,
		},
		Read:      false,
		CreatedAt: time.Now().UTC(),
		Category:  "social",
		Priority:  "normal",
	}
}

func (r *Router) handleFollow(c *hub.Client, ev *types.FollowEvent) {
	if ev.Action != "follow" {
		// Unfollows and anything else are deliberately silent.
		return
	}

	r.notifier.NotifyFollow(context.Background(), ev)

	target := r.hub.FindByUser(ev.FollowedID)
	if target == nil {
		return
	}

	name := ev.FollowerName
	if name == "" {
		name = ev.FollowerID
	}
	r.hub.SendTo(target, types.NotificationEnvelope{
		Type: types.EnvNotification,
		Notification: types.Notification{
			ID:      uuid.NewString(),
			UserID:  ev.FollowedID,
			Type:    "follow",
			Title:   "New follower",
			Message: name + " started following you",
			Data: map[string]any{
				"follower_id":   ev.FollowerID,
				"follower_name": name,
			},
			CreatedAt: time.Now().UTC(),
			Category:  "social",
			Priority:  "normal",
		},
	})
	// Older clients still listen for the flat follow envelope.
	r.hub.SendTo(target, types.FollowNotification{
		Type:         types.EnvLegacyFollow,
		FollowerID:   ev.FollowerID,
		FollowedID:   ev.FollowedID,
		FollowerName: name,
		Action:       ev.Action,
		Timestamp:    ev.Timestamp,
	})
}
