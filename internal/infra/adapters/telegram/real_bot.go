package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"numrelay/internal/config"
	"numrelay/internal/domain"
	"numrelay/internal/domain/ports/adapter"
	"numrelay/internal/infra/metrics"
)

var _ adapter.BotGateway = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter talks to the Bot API through tgbotapi. It never
// calls getMe on construction; identity is fetched when the relay asks.
type RealTelegramBotAdapter struct {
	bot    *tgbotapi.BotAPI
	client tgbotapi.HTTPClient
	log    *zerolog.Logger
}

// NewRealTelegramBotAdapter builds the adapter. client may be nil, in which
// case a client with cfg.UpstreamTO as timeout is used.
func NewRealTelegramBotAdapter(cfg *config.RelayConfig, token string, client tgbotapi.HTTPClient, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("relay config is nil")
	}
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.UpstreamTO}
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: client,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(endpoint)

	l := logger.With().Str("component", "telegram").Logger()
	return &RealTelegramBotAdapter{bot: bot, client: client, log: &l}, nil
}

// ctxClient binds one request context to the HTTP calls tgbotapi makes.
type ctxClient struct {
	ctx  context.Context
	next tgbotapi.HTTPClient
}

func (c *ctxClient) Do(req *http.Request) (*http.Response, error) {
	return c.next.Do(req.WithContext(c.ctx))
}

// botFor returns a shallow copy of the bot whose requests carry ctx.
func (r *RealTelegramBotAdapter) botFor(ctx context.Context) *tgbotapi.BotAPI {
	b := *r.bot
	b.Client = &ctxClient{ctx: ctx, next: r.client}
	return &b
}

// ClearUpdates asks for the newest update with offset -1, which confirms
// everything buffered before it.
func (r *RealTelegramBotAdapter) ClearUpdates(ctx context.Context) error {
	started := time.Now()
	_, err := r.botFor(ctx).Request(tgbotapi.UpdateConfig{Offset: -1})
	metrics.ObserveUpstream("getUpdates", started, err == nil)
	if err != nil {
		return fmt.Errorf("clear updates: %w", err)
	}
	return nil
}

// SendMessage posts text to chatID. A rejected call returns a
// *domain.UpstreamSendError carrying the API's JSON reply.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	started := time.Now()
	resp, err := r.botFor(ctx).Request(tgbotapi.NewMessage(chatID, text))
	metrics.ObserveUpstream("sendMessage", started, err == nil)
	if err == nil {
		return nil
	}
	return &domain.UpstreamSendError{Payload: sendErrorPayload(resp, err), Err: err}
}

func sendErrorPayload(resp *tgbotapi.APIResponse, err error) string {
	if resp != nil && (resp.ErrorCode != 0 || resp.Description != "") {
		if b, mErr := json.Marshal(resp); mErr == nil {
			return string(b)
		}
	}
	b, _ := json.Marshal(map[string]any{"ok": false, "description": err.Error()})
	return string(b)
}

// GetUpdates returns at most limit of the oldest unconfirmed updates, oldest
// first. Without a prior ClearUpdates these may predate the command.
// Updates that carry no message are skipped; positions keep the upstream order.
func (r *RealTelegramBotAdapter) GetUpdates(ctx context.Context, limit int) ([]domain.Update, error) {
	started := time.Now()
	raw, err := r.botFor(ctx).GetUpdates(tgbotapi.UpdateConfig{Limit: limit})
	metrics.ObserveUpstream("getUpdates", started, err == nil)
	if err != nil {
		r.log.Warn().Err(err).Msg("getUpdates failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchUpdates, err)
	}

	out := make([]domain.Update, 0, len(raw))
	for i, u := range raw {
		if u.Message == nil || u.Message.Chat == nil {
			continue
		}
		du := domain.Update{
			UpdateID: u.UpdateID,
			Position: i,
			ChatID:   u.Message.Chat.ID,
			Text:     u.Message.Text,
		}
		if u.Message.From != nil {
			du.SenderID = u.Message.From.ID
			du.SenderIsBot = u.Message.From.IsBot
		}
		out = append(out, du)
	}
	return out, nil
}

func (r *RealTelegramBotAdapter) GetSelf(ctx context.Context) (domain.Identity, error) {
	started := time.Now()
	me, err := r.botFor(ctx).GetMe()
	metrics.ObserveUpstream("getMe", started, err == nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("get bot identity: %w", err)
	}
	return domain.Identity{ID: me.ID, Username: me.UserName}, nil
}

// Token returns the credential the adapter was built with.
func (r *RealTelegramBotAdapter) Token() string { return r.bot.Token }
