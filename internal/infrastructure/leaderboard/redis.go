package leaderboard

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ladderKey is the sorted set mirroring profile ratings. Scores are
// ratings; ranks are read in descending score order.
const ladderKey = "ladder:ratings"

// RedisCache keeps a rating-ordered mirror of the ladder in a Redis
// sorted set for cheap rank lookups. It is a cache: settlement writes
// through to it best effort, and readers fall back to the database when
// an entry is missing.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// SetRating upserts the profile's score.
func (c *RedisCache) SetRating(ctx context.Context, profileID string, rating int) error {
	return c.client.ZAdd(ctx, ladderKey, redis.Z{
		Score:  float64(rating),
		Member: profileID,
	}).Err()
}

// Rank returns the profile's 0-based descending rank. ok is false when
// the profile is not in the cache.
func (c *RedisCache) Rank(ctx context.Context, profileID string) (int64, bool, error) {
	rank, err := c.client.ZRevRank(ctx, ladderKey, profileID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rank, true, nil
}

// Remove drops the profile from the cached ordering.
func (c *RedisCache) Remove(ctx context.Context, profileID string) error {
	return c.client.ZRem(ctx, ladderKey, profileID).Err()
}
