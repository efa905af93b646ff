package api

import (
	"encoding/json"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"numrelay/internal/domain"
	"numrelay/internal/domain/ports/adapter"
	"numrelay/internal/infra/logging"
	"numrelay/internal/infra/metrics"
	"numrelay/internal/usecase"
)

const maxBodyBytes = 64 << 10

// Options tunes the optional parts of the HTTP surface.
type Options struct {
	Limiter        adapter.RateLimiter // nil disables rate limiting
	RequestTimeout time.Duration
	TrustProxy     bool  // honour X-Forwarded-For / X-Real-IP; only behind a proxy that sets them
	Metrics        bool  // expose /metrics
	Static         fs.FS // served at "/"; nil disables the page
	Dev            bool
}

// Server exposes the relay over HTTP.
type Server struct {
	relay usecase.RelayUseCase
	opts  Options
	log   *zerolog.Logger
}

func NewServer(relay usecase.RelayUseCase, opts Options, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	l := logger.With().Str("component", "api").Logger()
	return &Server{relay: relay, opts: opts, log: &l}
}

// Router builds the chi router with the middleware chain applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if s.opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		CORS(),
		Timeout(s.opts.RequestTimeout),
	)

	r.Post("/api/data", s.handleLookup)
	r.Options("/api/data", handlePreflight)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if s.opts.Metrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	if s.opts.Static != nil {
		r.Handle("/*", http.FileServer(http.FS(s.opts.Static)))
	}
	return r
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	if !s.allow(r) {
		metrics.IncRateLimited()
		writeError(w, domain.ErrRateLimited)
		return
	}

	var req lookupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("request body is not JSON")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	res, err := s.relay.Lookup(ctx, req.number())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, res)
}

// allow consults the limiter. Limiter failures admit the request.
func (s *Server) allow(r *http.Request) bool {
	if s.opts.Limiter == nil {
		return true
	}
	ok, err := s.opts.Limiter.Allow(r.Context(), clientIP(r))
	if err != nil {
		l := logging.With(r.Context(), s.log)
		l.Warn().Err(err).Msg("rate limiter unavailable; admitting request")
		return true
	}
	return ok
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
