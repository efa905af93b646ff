package redis

import (
	"context"
	"fmt"
	"time"

	"numrelay/internal/domain/ports/adapter"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter: INCR, and EXPIRE on the first hit.
type RateLimiter struct {
	client RedisClient
	limit  int
	window time.Duration
}

func NewRateLimiter(client RedisClient, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow counts one hit for client (an IP address) in the current window.
func (r *RateLimiter) Allow(ctx context.Context, client string) (bool, error) {
	key := ClientKey(client)
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window); err != nil {
			return false, err
		}
	}

	return count <= int64(r.limit), nil
}

func ClientKey(ip string) string {
	return fmt.Sprintf("rate_limit:lookup:%s", ip)
}
