package adapter

import "context"

// ChatGuard serialises access to the shared chat. Acquire blocks until the
// chat is free or ctx is done; the returned func releases it.
type ChatGuard interface {
	Acquire(ctx context.Context, chatID int64) (release func(), err error)
}

// RateLimiter admits or rejects one request from client within a window.
type RateLimiter interface {
	Allow(ctx context.Context, client string) (bool, error)
}
