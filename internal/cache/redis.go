// Package cache wraps the Redis client used for session caching and
// rate limiting. Every helper degrades to a no-op when Redis is down so
// the application keeps working against the database alone.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// New connects to Redis at addr and verifies the connection with a ping.
// Returns nil when Redis is unreachable; callers must tolerate a nil
// client.
func New(addr string, log *slog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if log != nil {
			log.Warn("redis unavailable, continuing without cache", slog.String("error", err.Error()))
		}
		return nil
	}
	return client
}
