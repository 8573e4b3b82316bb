package presence

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"whispr/internal/config"
)

// Store holds the last-activity timestamp per account. Only the owning
// participant's client writes its own record, so a single-row overwrite is
// all the atomicity required.
type Store interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	// LastSeen returns nil when the user was never observed online in this
	// session. That is not the same thing as "offline now".
	LastSeen(ctx context.Context, userID string) (*time.Time, error)
}

type redisStore struct {
	client *redis.Client
}

// NewRedisClient constructs the presence store connection and verifies it with a ping
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

// Presence records expire on their own well past the online window so a
// crashed client eventually reads as null rather than a frozen "last seen".
const recordTTL = 30 * 24 * time.Hour

func (s *redisStore) SetOnline(ctx context.Context, userID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.client.Set(ctx, presenceKey(userID), now, recordTTL).Err()
}

func (s *redisStore) SetOffline(ctx context.Context, userID string) error {
	return s.client.Del(ctx, presenceKey(userID)).Err()
}

func (s *redisStore) LastSeen(ctx context.Context, userID string) (*time.Time, error) {
	val, err := s.client.Get(ctx, presenceKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return nil, fmt.Errorf("presence: bad timestamp for %s: %w", userID, err)
	}
	return &t, nil
}
