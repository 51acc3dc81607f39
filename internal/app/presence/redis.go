package presence

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// typingKeyTTL bounds how long a room's typing set can outlive its last
// update, so a crashed server never leaves a username typing forever.
const typingKeyTTL = 30 * time.Second

// RedisStore keeps typing sets in Redis, one set per room. It lets multiple
// server processes share typing state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using the given URL and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func typingKey(room string) string {
	return "typing:" + room
}

// SetTyping adds or removes a username from the room's typing set.
func (r *RedisStore) SetTyping(ctx context.Context, room, username string, typing bool) error {
	key := typingKey(room)

	if typing {
		pipe := r.client.TxPipeline()
		pipe.SAdd(ctx, key, username)
		pipe.Expire(ctx, key, typingKeyTTL)
		_, err := pipe.Exec(ctx)
		return err
	}

	return r.client.SRem(ctx, key, username).Err()
}

// TypingUsers returns the usernames currently typing in the room.
func (r *RedisStore) TypingUsers(ctx context.Context, room string) ([]string, error) {
	users, err := r.client.SMembers(ctx, typingKey(room)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}

// ClearUser removes the username from the room's typing set.
func (r *RedisStore) ClearUser(ctx context.Context, room, username string) error {
	return r.SetTyping(ctx, room, username, false)
}

// Close releases the underlying Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
