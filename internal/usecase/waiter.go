package usecase

import (
	"context"
	"time"
)

// Waiter gives the external responder time to answer between sending the
// command and polling for its reply.
type Waiter interface {
	Wait(ctx context.Context) error
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func(ctx context.Context) error

func (f WaiterFunc) Wait(ctx context.Context) error { return f(ctx) }

// FixedWaiter sleeps for d or until ctx is done. d <= 0 returns immediately.
func FixedWaiter(d time.Duration) Waiter {
	return WaiterFunc(func(ctx context.Context) error {
		if d <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// NoWait does not wait at all.
var NoWait Waiter = FixedWaiter(0)
