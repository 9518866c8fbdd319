package sequence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const redisBackend = "redis"

// RedisCounter uses INCR on a key holding the last issued number.
type RedisCounter struct {
	client redis.UniversalClient
	key    string
}

// NewRedisCounter creates a counter on key
func NewRedisCounter(client redis.UniversalClient, key string) *RedisCounter {
	return &RedisCounter{client: client, key: key}
}

func (c *RedisCounter) Next(ctx context.Context) (int, error) {
	n, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, persistErr(redisBackend, "incr", err)
	}
	return int(n), nil
}
