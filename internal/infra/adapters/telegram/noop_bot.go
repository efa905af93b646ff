package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"numrelay/internal/domain"
	"numrelay/internal/domain/ports/adapter"
)

var _ adapter.BotGateway = (*NoopBotAdapter)(nil)

const (
	noopSelfID      int64 = 1
	noopResponderID int64 = 2
)

// NoopBotAdapter implements adapter.BotGateway for local/dev runs without a
// bot token. It logs outgoing commands and answers each one with a canned
// message from a fake responder bot.
type NoopBotAdapter struct {
	mu      sync.Mutex
	updates []domain.Update
	nextID  int
	delay   time.Duration
	log     *zerolog.Logger
}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "noop-telegram").Logger()
	return &NoopBotAdapter{delay: 50 * time.Millisecond, log: &l}
}

func (b *NoopBotAdapter) ClearUpdates(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.updates); n > 1 {
		b.updates = b.updates[n-1:]
	}
	return nil
}

// SendMessage records the command and a reply to it, simulating a small delay.
func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-time.After(b.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("command sent")

	b.mu.Lock()
	defer b.mu.Unlock()
	b.push(domain.Update{ChatID: chatID, SenderID: noopSelfID, SenderIsBot: true, Text: text})
	b.push(domain.Update{ChatID: chatID, SenderID: noopResponderID, SenderIsBot: true, Text: "noop reply to " + text})
	return nil
}

func (b *NoopBotAdapter) push(u domain.Update) {
	b.nextID++
	u.UpdateID = b.nextID
	b.updates = append(b.updates, u)
}

func (b *NoopBotAdapter) GetUpdates(ctx context.Context, limit int) ([]domain.Update, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.updates
	if limit > 0 && len(src) > limit {
		src = src[len(src)-limit:]
	}
	out := make([]domain.Update, len(src))
	copy(out, src)
	for i := range out {
		out[i].Position = i
	}
	return out, nil
}

func (b *NoopBotAdapter) GetSelf(ctx context.Context) (domain.Identity, error) {
	return domain.Identity{ID: noopSelfID, Username: "noop_relay_bot"}, nil
}
