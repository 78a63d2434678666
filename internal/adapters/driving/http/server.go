package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	router      *http.ServeMux
	version     string
	environment string
	corsOrigins []string
	trustProxy  bool
	searchTopK  int
	logger      *slog.Logger

	// Services
	corpus    driving.CorpusService
	retriever driving.RetrievalService
	chat      driving.ChatService
	admin     driving.AdminService

	// Infrastructure
	runtime     *domain.RuntimeConfig
	rateLimiter driven.RateLimiter // nil disables chat rate limiting
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	Version     string
	Environment string   // "development" exposes internal error details
	CORSOrigins []string // "*" allows any origin
	TrustProxy  bool     // Use X-Forwarded-For for the rate limit key
	SearchTopK  int      // Results when a search omits top_k (default: 4)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        8080,
		Version:     "dev",
		Environment: "production",
		CORSOrigins: []string{"*"},
		SearchTopK:  defaultSearchTopK,
	}
}

// Dependencies are the services the HTTP layer drives
type Dependencies struct {
	Corpus      driving.CorpusService
	Retriever   driving.RetrievalService
	Chat        driving.ChatService
	Admin       driving.AdminService
	Runtime     *domain.RuntimeConfig
	RateLimiter driven.RateLimiter
	Logger      *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	searchTopK := cfg.SearchTopK
	if searchTopK <= 0 {
		searchTopK = defaultSearchTopK
	}

	s := &Server{
		router:      http.NewServeMux(),
		version:     cfg.Version,
		environment: cfg.Environment,
		corsOrigins: cfg.CORSOrigins,
		trustProxy:  cfg.TrustProxy,
		searchTopK:  searchTopK,
		logger:      logger.With("component", "http"),
		corpus:      deps.Corpus,
		retriever:   deps.Retriever,
		chat:        deps.Chat,
		admin:       deps.Admin,
		runtime:     deps.Runtime,
		rateLimiter: deps.RateLimiter,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Generation can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.admin)
	rateLimit := NewRateLimitMiddleware(s.rateLimiter, s.trustProxy, s.logger)

	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Public API
	s.router.Handle("POST /api/v1/chat", rateLimit.Handler(http.HandlerFunc(s.handleChat)))
	s.router.HandleFunc("POST /api/v1/search", s.handleSearch)
	s.router.HandleFunc("GET /api/v1/stats", s.handleStats)

	// Admin
	s.router.HandleFunc("POST /api/v1/admin/login", s.handleLogin)
	s.router.Handle("POST /api/v1/admin/corpus/refresh",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleRefreshCorpus))))
	s.router.Handle("GET /api/v1/admin/chats",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleListChats))))
}

// Handler returns the router wrapped in the global middleware chain:
// recovery, request logging, security headers, CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = NewCORSMiddleware(s.corsOrigins).Handler(h)
	h = SecurityHeaders(h)
	h = NewLoggingMiddleware(s.logger).Handler(h)
	h = NewRecoveryMiddleware(s.logger).Handler(h)
	return h
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
