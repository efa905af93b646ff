// File: internal/usecase/relay_uc.go
package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"numrelay/internal/domain"
	"numrelay/internal/domain/ports/adapter"
	"numrelay/internal/infra/logging"
	"numrelay/internal/infra/metrics"
)

// Compile-time check
var _ RelayUseCase = (*relayUC)(nil)

type RelayUseCase interface {
	// Lookup sends the command for number to the shared chat and returns the
	// most recent reply written by another bot. A missing reply is a normal
	// result with Found=false.
	Lookup(ctx context.Context, number string) (domain.RelayResult, error)
}

// RelayOptions configures a relayUC.
type RelayOptions struct {
	ChatID        int64
	UpdatesLimit  int
	Waiter        Waiter
	Guard         adapter.ChatGuard // nil: no isolation between callers
	LockWait      time.Duration
	CacheIdentity bool
	Dev           bool
}

type relayUC struct {
	bot  adapter.BotGateway
	opts RelayOptions
	log  *zerolog.Logger

	mu       sync.Mutex
	self     *domain.Identity
	selfHash [32]byte
}

func NewRelayUseCase(bot adapter.BotGateway, opts RelayOptions, logger *zerolog.Logger) (*relayUC, error) {
	if bot == nil {
		return nil, errors.New("bot gateway is nil")
	}
	if opts.ChatID == 0 {
		return nil, fmt.Errorf("%w: chat id is required", domain.ErrInvalidConfig)
	}
	if opts.UpdatesLimit <= 0 {
		opts.UpdatesLimit = 15
	}
	if opts.Waiter == nil {
		opts.Waiter = FixedWaiter(3500 * time.Millisecond)
	}
	if opts.LockWait <= 0 {
		opts.LockWait = 10 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "relay").Logger()
	return &relayUC{bot: bot, opts: opts, log: &l}, nil
}

func (r *relayUC) Lookup(ctx context.Context, number string) (domain.RelayResult, error) {
	ctx = logging.WithChatID(ctx, r.opts.ChatID)
	log := logging.With(ctx, r.log)
	defer logging.TraceDuration(log, "relay.Lookup")()

	q, err := domain.ParseQuery(number)
	if err != nil {
		metrics.IncLookup(metrics.OutcomeInvalid)
		return domain.RelayResult{}, err
	}
	log.Debug().Str("number", logging.Redact(q.String(), r.opts.Dev)).Msg("lookup started")

	if r.opts.Guard != nil {
		release, err := r.acquire(ctx)
		if err != nil {
			metrics.IncLookup(metrics.OutcomeBusy)
			return domain.RelayResult{}, err
		}
		defer release()
	}

	res, err := r.relay(ctx, log, q)
	switch {
	case err != nil:
		metrics.IncLookup(metrics.OutcomeError)
		log.Error().Err(err).Msg("lookup failed")
	case res.Found:
		metrics.IncLookup(metrics.OutcomeFound)
		log.Info().Msg("reply relayed")
	default:
		metrics.IncLookup(metrics.OutcomeNotFound)
		log.Info().Msg("no reply within wait window")
	}
	return res, err
}

func (r *relayUC) acquire(ctx context.Context) (func(), error) {
	lctx, cancel := context.WithTimeout(ctx, r.opts.LockWait)
	defer cancel()

	started := time.Now()
	release, err := r.opts.Guard.Acquire(lctx, r.opts.ChatID)
	metrics.ObserveLockWait(time.Since(started))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrChatBusy, err)
	}
	return release, nil
}

// relay runs the four upstream calls in order. Clearing is best-effort.
func (r *relayUC) relay(ctx context.Context, log *zerolog.Logger, q domain.Query) (domain.RelayResult, error) {
	if err := r.bot.ClearUpdates(ctx); err != nil {
		log.Warn().Err(err).Msg("clear updates failed; continuing")
	}

	if err := r.bot.SendMessage(ctx, r.opts.ChatID, q.Command()); err != nil {
		return domain.RelayResult{}, err
	}

	if err := r.opts.Waiter.Wait(ctx); err != nil {
		return domain.RelayResult{}, err
	}

	updates, err := r.bot.GetUpdates(ctx, r.opts.UpdatesLimit)
	if err != nil {
		return domain.RelayResult{}, err
	}

	self, err := r.identity(ctx)
	if err != nil {
		return domain.RelayResult{}, err
	}

	u, ok := domain.SelectReply(updates, r.opts.ChatID, self.ID)
	if !ok || u.Text == "" {
		return domain.NotFound(), nil
	}
	log.Debug().Int("update_id", u.UpdateID).Int64("sender_id", u.SenderID).Msg("reply selected")
	return domain.RelayResult{Found: true, Text: u.Text}, nil
}

// tokenSource is implemented by gateways that can report their credential.
// The Telegram adapter's token is fixed at construction, so with it the
// cache never invalidates and a new token means a restart. The hash only
// matters for gateways whose Token can change.
type tokenSource interface {
	Token() string
}

func (r *relayUC) identity(ctx context.Context) (domain.Identity, error) {
	if !r.opts.CacheIdentity {
		return r.bot.GetSelf(ctx)
	}

	var hash [32]byte
	if ts, ok := r.bot.(tokenSource); ok {
		hash = sha256.Sum256([]byte(ts.Token()))
	}

	r.mu.Lock()
	if r.self != nil && r.selfHash == hash {
		id := *r.self
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	id, err := r.bot.GetSelf(ctx)
	if err != nil {
		return domain.Identity{}, err
	}
	r.mu.Lock()
	r.self, r.selfHash = &id, hash
	r.mu.Unlock()
	return id, nil
}
