// Package api provides the HTTP REST API for finboard.
//
// Endpoints:
//
//	GET  /health               liveness probe
//	GET  /ready                readiness probe (pings the warehouse)
//	GET  /api/market/meta      filter metadata (tickers, currencies, date bounds)
//	GET  /api/market/stocks    stock frame, filterable by date range and tickers
//	GET  /api/market/fx        EUR exchange rates, filterable by quote currency
//	GET  /api/models           supported completion models
//	POST /api/ask              answer a question, optionally grounded in documents
//	GET  /api/documents        indexed documents with signed links
//	GET  /docs/{path...}       serve a document through its signed link
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (request ID, logging, recovery)
//   - ratelimit.go: per-IP token bucket rate limiting
//   - health.go: health check endpoints (/health, /ready)
//   - market.go: market data endpoints
//   - ask.go: question answering endpoint
//   - docs.go: document listing and signed-link serving
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/finboard/internal/docstore"
	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/market"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:3500"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Completion round trips can be slow, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// ServerConfig contains the dependencies for creating the API server.
type ServerConfig struct {
	Logger       log.Logger
	Loader       *market.Loader  // Required
	Docs         *docstore.Store // Required
	Answerer     Answerer        // Required
	DefaultModel string          // Model used when a request omits one
	Pool         *pgxpool.Pool   // Optional: nil fails the /ready probe
	TrustProxy   bool            // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)
	RateBurst    int             // Rate limiter burst size per IP (0 = default 60)
}

// Server is the HTTP server for finboard's REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger
	rl     *rateLimiter
	proxy  bool

	// Handlers
	health *HealthHandler
	market *MarketHandler
	ask    *AskHandler
	docs   *DocsHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}

	mux := http.NewServeMux()

	s := &Server{
		mux:    mux,
		logger: logger,
		rl:     newRateLimiter(1.0, burst),
		proxy:  cfg.TrustProxy,
		health: NewHealthHandler(cfg.Pool, logger),
		market: NewMarketHandler(cfg.Loader, logger),
		ask:    NewAskHandler(cfg.Answerer, cfg.DefaultModel, logger),
		docs:   NewDocsHandler(cfg.Docs, logger),
	}

	s.health.RegisterRoutes(mux)
	s.market.RegisterRoutes(mux)
	s.ask.RegisterRoutes(mux)
	s.docs.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → request ID → logging → rate limit → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware(),
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.rl, s.proxy, s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
