// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"numrelay/internal/domain"
)

// BotGateway is the subset of the bot API the relay consumes.
type BotGateway interface {
	// ClearUpdates confirms every buffered update so a later poll only sees new ones.
	ClearUpdates(ctx context.Context) error
	SendMessage(ctx context.Context, chatID int64, text string) error
	GetUpdates(ctx context.Context, limit int) ([]domain.Update, error)
	GetSelf(ctx context.Context) (domain.Identity, error)
}
