package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTypingInjectsSessionUser(t *testing.T) {
	in, err := Decode([]byte(`{"type":"typing_update","conversationId":"c1"}`), "u1")
	require.NoError(t, err)

	assert.Equal(t, TagTyping, in.Tag)
	require.NotNil(t, in.Typing)
	assert.Equal(t, "c1", in.Typing.ConversationID)
	assert.Equal(t, "u1", in.Typing.UserID)
	assert.Equal(t, "u1", in.Raw["userId"])
}

func TestDecodeDoesNotOverridePayloadUser(t *testing.T) {
	in, err := Decode([]byte(`{"type":"typing_update","conversationId":"c1","userId":"u9"}`), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u9", in.Typing.UserID)
	assert.Equal(t, "u9", in.Raw["userId"])
}

func TestDecodeNewMessage(t *testing.T) {
	payload := []byte(`{"type":"new_message","message":{"conversation_id":"c1","sender_id":"u1","content":"hi","sender":{"username":"alice"},"id":"m1"}}`)
	in, err := Decode(payload, "u1")
	require.NoError(t, err)

	assert.Equal(t, TagMessage, in.Tag)
	require.NotNil(t, in.Message)
	assert.Equal(t, "c1", in.Message.ConversationID)
	assert.Equal(t, "u1", in.Message.SenderID)
	assert.Equal(t, "hi", in.Message.Content)
	assert.Equal(t, "m1", in.Message.ID)
	assert.Equal(t, "alice", in.Message.Sender.Username)
}

func TestDecodePresence(t *testing.T) {
	in, err := Decode([]byte(`{"type":"user_presence","userId":"u3","isOnline":false}`), "")
	require.NoError(t, err)

	require.NotNil(t, in.Presence)
	assert.Equal(t, "u3", in.Presence.UserID)
	assert.False(t, in.Presence.IsOnline)
}

func TestDecodeFollow(t *testing.T) {
	payload := []byte(`{"type":"follow","action":"follow","followedId":"u2","followerId":"u1","followerName":"Alice"}`)
	in, err := Decode(payload, "u1")
	require.NoError(t, err)

	require.NotNil(t, in.Follow)
	assert.Equal(t, "follow", in.Follow.Action)
	assert.Equal(t, "u2", in.Follow.FollowedID)
	assert.Equal(t, "Alice", in.Follow.FollowerName)
}

func TestDecodeUnknownTagIsPassthrough(t *testing.T) {
	in, err := Decode([]byte(`{"type":"reaction_added","emoji":"+1"}`), "u1")
	require.NoError(t, err)

	assert.Equal(t, "reaction_added", in.Tag)
	assert.Nil(t, in.Typing)
	assert.Nil(t, in.Message)
	assert.Equal(t, "+1", in.Raw["emoji"])
	assert.Equal(t, "u1", in.Raw["userId"])
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	_, err := Decode([]byte(`not json`), "u1")
	assert.Error(t, err)

	_, err = Decode([]byte(`{"conversationId":"c1"}`), "u1")
	assert.Error(t, err, "missing type tag should be rejected")

	_, err = Decode([]byte(`{"type":42}`), "u1")
	assert.Error(t, err, "non-string type tag should be rejected")
}

func TestSenderDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", Sender{FirstName: "Alice", Username: "al"}.DisplayName("u1"))
	assert.Equal(t, "al", Sender{Username: "al"}.DisplayName("u1"))
	assert.Equal(t, "u1", Sender{}.DisplayName("u1"))
}
