package scheduler

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens a plain Redis client on the queue backend, used for
// health checks and the event relay.
func NewRedisClient(redisURL string, tlsInsecure bool) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if tlsInsecure && opt.TLSConfig != nil {
		opt.TLSConfig = opt.TLSConfig.Clone()
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

// RedisHealth pings the queue backend for readiness checks.
type RedisHealth struct {
	client *redis.Client
}

func NewRedisHealth(client *redis.Client) *RedisHealth {
	return &RedisHealth{client: client}
}

func (h *RedisHealth) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
