package health

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisChecker reports whether the search cache is reachable.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker wraps a redis client for readiness probing. The client is
// typically shared with the cache layer.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// HealthCheck sends a PING within the probe deadline.
func (c *RedisChecker) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
