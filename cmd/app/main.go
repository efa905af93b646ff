// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"numrelay/internal/config"
	"numrelay/internal/domain/ports/adapter"
	tele "numrelay/internal/infra/adapters/telegram"
	"numrelay/internal/infra/api"
	"numrelay/internal/infra/logging"
	"numrelay/internal/infra/metrics"
	red "numrelay/internal/infra/redis"
	"numrelay/internal/infra/secrets"
	"numrelay/internal/infra/tracing"
	"numrelay/internal/usecase"
	"numrelay/web"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, unredacted numbers")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	// ---- Metrics & tracing ----
	if cfg.Metrics.Enabled {
		metrics.MustRegister()
		metrics.SetBuildInfo(version, commit)
	}
	shutdownTracing, err := tracing.Init(cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// ---- Redis (optional) ----
	var redisClient *red.Client
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
	}

	// ---- Telegram gateway ----
	bot, err := buildGateway(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}

	// ---- Relay ----
	guard, err := buildGuard(cfg, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("chat guard")
	}
	relayUC, err := usecase.NewRelayUseCase(bot, usecase.RelayOptions{
		ChatID:        cfg.Relay.ChatID,
		UpdatesLimit:  cfg.Relay.UpdatesLimit,
		Waiter:        usecase.FixedWaiter(cfg.Relay.Wait),
		Guard:         guard,
		LockWait:      cfg.Relay.LockWait,
		CacheIdentity: cfg.Relay.IdentityCached(),
		Dev:           cfg.Runtime.Dev,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("relay")
	}

	// ---- HTTP ----
	opts := api.Options{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		TrustProxy:     cfg.HTTP.TrustProxy,
		Metrics:        cfg.Metrics.Enabled,
		Static:         web.Assets,
		Dev:            cfg.Runtime.Dev,
	}
	if cfg.HTTP.RateLimit.PerMinute > 0 && redisClient != nil {
		opts.Limiter = red.NewRateLimiter(redisClient, cfg.HTTP.RateLimit.PerMinute, time.Minute)
	}
	handler := tracing.WrapHandler("numrelay", api.NewServer(relayUC, opts, logger).Router())

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Int64("chat_id", cfg.Relay.ChatID).
			Str("gateway", cfg.Relay.Gateway).
			Str("serialize", cfg.Relay.Serialize).
			Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	sctx, scancel := context.WithTimeout(context.Background(), cfg.HTTP.RequestTimeout)
	defer scancel()
	if err := server.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

func buildGateway(cfg *config.Config, logger *zerolog.Logger) (adapter.BotGateway, error) {
	if cfg.Relay.Gateway == "noop" {
		logger.Warn().Msg("relay.gateway=noop; no messages leave this process")
		return tele.NewNoopBotAdapter(logger), nil
	}
	token, err := secrets.BotToken(&cfg.Relay)
	if err != nil {
		return nil, err
	}
	return tele.NewRealTelegramBotAdapter(&cfg.Relay, token, nil, logger)
}

func buildGuard(cfg *config.Config, redisClient *red.Client, logger *zerolog.Logger) (adapter.ChatGuard, error) {
	switch cfg.Relay.Serialize {
	case "local":
		return usecase.NewLocalChatGuard(), nil
	case "redis":
		if redisClient == nil {
			return nil, errors.New("relay.serialize=redis requires redis.url")
		}
		return red.NewChatLocker(redisClient, cfg.Relay.LockTTL, logger), nil
	default:
		return nil, nil
	}
}
