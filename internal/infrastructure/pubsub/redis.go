package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes fire-and-forget notifications over Redis
// channels. Delivery is at-most-once; consumers pair subscriptions with a
// polling fallback.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, payload string) error {
	return p.client.Publish(ctx, channel, payload).Err()
}
