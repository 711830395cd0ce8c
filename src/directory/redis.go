package directory

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds connection settings for the participant directory backend.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key prefix, e.g. "chat:"
}

// RedisDirectory reads conversation membership from the chat backend's
// participant sets. The relay only reads these keys; the backend owns them.
type RedisDirectory struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedis creates a directory over the given Redis backend.
func NewRedis(cfg Config, logger zerolog.Logger) *RedisDirectory {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisDirectory{
		client: client,
		prefix: cfg.Prefix,
		logger: logger.With().Str("component", "directory").Logger(),
	}
}

// Ping verifies the backend is reachable. Failure is not fatal to the
// relay; lookups simply fail until the backend comes back.
func (d *RedisDirectory) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (d *RedisDirectory) Close() error { return d.client.Close() }

func (d *RedisDirectory) key(conversationID string) string {
	return fmt.Sprintf("%sconversation:%s:participants", d.prefix, conversationID)
}

// ActiveParticipants returns the members of the conversation's participant
// set. Departed participants are removed from the set by the owning backend.
func (d *RedisDirectory) ActiveParticipants(ctx context.Context, conversationID string) ([]string, error) {
	members, err := d.client.SMembers(ctx, d.key(conversationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("participants for %s: %w", conversationID, err)
	}
	return members, nil
}
