package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPresence tracks queue liveness as per-profile keys with a TTL. A
// missing key means the player stopped heartbeating and can be reaped.
type RedisPresence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPresence(client *redis.Client, ttl time.Duration) *RedisPresence {
	return &RedisPresence{client: client, ttl: ttl}
}

func key(profileID string) string {
	return fmt.Sprintf("ladder:presence:%s", profileID)
}

func (p *RedisPresence) Touch(ctx context.Context, profileID string) error {
	return p.client.Set(ctx, key(profileID), "1", p.ttl).Err()
}

func (p *RedisPresence) Alive(ctx context.Context, profileID string) (bool, error) {
	err := p.client.Get(ctx, key(profileID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *RedisPresence) Forget(ctx context.Context, profileID string) error {
	return p.client.Del(ctx, key(profileID)).Err()
}
