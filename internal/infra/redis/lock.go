// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"numrelay/internal/domain/ports/adapter"
)

var _ adapter.ChatGuard = (*ChatLocker)(nil)

// ChatLocker serialises lookups on one chat across every relay instance
// sharing the same Redis.
type ChatLocker struct {
	cli   RedisClient
	ttl   time.Duration
	retry time.Duration
	log   *zerolog.Logger
}

func NewChatLocker(c RedisClient, ttl time.Duration, logger *zerolog.Logger) *ChatLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ChatLocker{cli: c, ttl: ttl, retry: 50 * time.Millisecond, log: logger}
}

func ChatLockKey(chatID int64) string {
	return fmt.Sprintf("relay:chat:%d", chatID)
}

// Acquire polls SET NX until it wins or ctx ends. The lock expires after
// the TTL even if the holder never releases it.
func (l *ChatLocker) Acquire(ctx context.Context, chatID int64) (func(), error) {
	key := ChatLockKey(chatID)
	token := uuid.NewString()
	for {
		ok, err := l.cli.SetNX(ctx, key, token, l.ttl)
		if err == nil && ok {
			return func() {
				// the request context may already be gone
				rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := l.cli.CompareAndDelete(rctx, key, token); err != nil {
					l.log.Warn().Err(err).Str("key", key).Msg("chat lock release failed")
				}
			}, nil
		}
		if err != nil {
			l.log.Debug().Err(err).Str("key", key).Msg("chat lock attempt failed")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
