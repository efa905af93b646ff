package usecase

import (
	"context"

	"numrelay/internal/domain/ports/adapter"
)

var _ adapter.ChatGuard = (*LocalChatGuard)(nil)

// LocalChatGuard serialises lookups within one process. The relay serves a
// single chat, so one buffered channel is enough; waiting on it can be
// abandoned when ctx ends.
type LocalChatGuard struct {
	sem chan struct{}
}

func NewLocalChatGuard() *LocalChatGuard {
	return &LocalChatGuard{sem: make(chan struct{}, 1)}
}

func (g *LocalChatGuard) Acquire(ctx context.Context, _ int64) (func(), error) {
	select {
	case g.sem <- struct{}{}:
		return func() { <-g.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
