package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/relay/src/types"
)

// fakeDirectory serves canned participant lists.
type fakeDirectory struct {
	participants []string
	err          error
}

func (f *fakeDirectory) ActiveParticipants(context.Context, string) ([]string, error) {
	return f.participants, f.err
}

// apiRecorder captures the calls the dispatcher makes against the external API.
type apiRecorder struct {
	mu            sync.Mutex
	notifications []NotificationRecord
	activities    []ActivityRecord
	headers       []string
	failFor       string // user_id whose notification call gets a 500
}

func (a *apiRecorder) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.headers = append(a.headers, r.Header.Get("X-Internal-Request"))
		switch r.URL.Path {
		case "/api/notifications":
			var rec NotificationRecord
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
			a.notifications = append(a.notifications, rec)
			if a.failFor != "" && rec.UserID == a.failFor {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		case "/api/user-activity":
			var rec ActivityRecord
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
			a.activities = append(a.activities, rec)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
	})
}

func (a *apiRecorder) notificationUsers() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	users := make([]string, 0, len(a.notifications))
	for _, n := range a.notifications {
		users = append(users, n.UserID)
	}
	return users
}

func testMessage() *types.ChatMessage {
	return &types.ChatMessage{
		ID:             "m1",
		ConversationID: "c1",
		SenderID:       "u1",
		Content:        "hi",
		Sender:         types.Sender{Username: "alice"},
	}
}

func TestNotifyNewMessageSkipsSender(t *testing.T) {
	rec := &apiRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	dir := &fakeDirectory{participants: []string{"u1", "u2", "u3"}}
	d := New(dir, srv.URL, zerolog.Nop())

	d.NotifyNewMessage(context.Background(), testMessage())
	d.Wait()

	users := rec.notificationUsers()
	assert.ElementsMatch(t, []string{"u2", "u3"}, users)

	require.Len(t, rec.activities, 1)
	activity := rec.activities[0]
	assert.Equal(t, "u1", activity.UserID)
	assert.Equal(t, "message_sent", activity.Type)
	assert.Equal(t, "private", activity.Visibility)
	assert.EqualValues(t, 2, activity.Data["recipients"])

	require.Len(t, rec.notifications, 2)
	n := rec.notifications[0]
	assert.Equal(t, "message", n.Type)
	assert.Equal(t, "New message from alice", n.Title)
	assert.Equal(t, "hi", n.Message)

	for _, h := range rec.headers {
		assert.Equal(t, "true", h, "calls carry the server-originated marker")
	}
}

func TestNotifyNewMessageAbortsOnLookupFailure(t *testing.T) {
	rec := &apiRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	dir := &fakeDirectory{err: errors.New("directory down")}
	d := New(dir, srv.URL, zerolog.Nop())

	d.NotifyNewMessage(context.Background(), testMessage())
	d.Wait()

	assert.Empty(t, rec.notifications, "unreachable directory means silence")
	assert.Empty(t, rec.activities)
}

func TestPerRecipientFailureDoesNotStopSiblings(t *testing.T) {
	rec := &apiRecorder{failFor: "u2"}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	dir := &fakeDirectory{participants: []string{"u1", "u2", "u3"}}
	d := New(dir, srv.URL, zerolog.Nop())

	d.NotifyNewMessage(context.Background(), testMessage())
	d.Wait()

	assert.ElementsMatch(t, []string{"u2", "u3"}, rec.notificationUsers(),
		"every recipient's call is attempted despite u2's failure")
	assert.Len(t, rec.activities, 1)
}

func TestNotifyFollow(t *testing.T) {
	rec := &apiRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	d := New(&fakeDirectory{}, srv.URL, zerolog.Nop())

	d.NotifyFollow(context.Background(), &types.FollowEvent{
		Action:     "follow",
		FollowedID: "u2",
		FollowerID: "u1",
	})
	d.Wait()

	require.Len(t, rec.notifications, 1)
	n := rec.notifications[0]
	assert.Equal(t, "u2", n.UserID)
	assert.Equal(t, "follow", n.Type)
	assert.Contains(t, n.Message, "u1", "follower id is the fallback display name")
	assert.Empty(t, rec.activities)
}

func TestMissingBaseURLFailsQuietly(t *testing.T) {
	dir := &fakeDirectory{participants: []string{"u1", "u2"}}
	d := New(dir, "", zerolog.Nop())

	// Must not panic or block; every call fails immediately and is logged.
	d.NotifyNewMessage(context.Background(), testMessage())
	d.NotifyFollow(context.Background(), &types.FollowEvent{Action: "follow", FollowedID: "u2", FollowerID: "u1"})
	d.Wait()
}
