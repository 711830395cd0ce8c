package directory

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParticipantKeyLayout(t *testing.T) {
	d := NewRedis(Config{Addr: "localhost:6379", Prefix: "chat:"}, zerolog.Nop())
	defer d.Close()

	assert.Equal(t, "chat:conversation:c1:participants", d.key("c1"))
}

func TestParticipantKeyWithoutPrefix(t *testing.T) {
	d := NewRedis(Config{Addr: "localhost:6379"}, zerolog.Nop())
	defer d.Close()

	assert.Equal(t, "conversation:c1:participants", d.key("c1"))
}
