package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-assist/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-assist/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-assist/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/sercha-assist/internal/adapters/driven/memory"
	"github.com/custodia-labs/sercha-assist/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-assist/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-assist/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-assist/internal/config"
	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-assist/internal/core/services"
	"github.com/custodia-labs/sercha-assist/internal/normalisers"
	"github.com/custodia-labs/sercha-assist/internal/postprocessors"
	"github.com/custodia-labs/sercha-assist/internal/runtime"
	"github.com/custodia-labs/sercha-assist/internal/worker"
)

var version = "dev"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	mode := "api"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	switch mode {
	case "api":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := runAPI(ctx, cfg); err != nil {
			slog.Error("server exited", "error", err)
			os.Exit(1)
		}

	case "hash-password":
		if len(os.Args) < 3 {
			fatal("usage: sercha-assist hash-password <password>")
		}
		hash, err := auth.NewAdapter(cfg.Auth.JWTSecret).HashPassword(os.Args[2])
		if err != nil {
			fatal("failed to hash password", "error", err)
		}
		fmt.Println(hash)

	case "token":
		if cfg.Auth.JWTSecret == "" {
			fatal("JWT_SECRET is required to issue tokens")
		}
		admin := services.NewAdminService(auth.NewAdapter(cfg.Auth.JWTSecret), services.AdminServiceConfig{
			Username: cfg.Auth.AdminUsername,
			TokenTTL: cfg.Auth.TokenTTL,
		})
		resp, err := admin.IssueToken(context.Background())
		if err != nil {
			fatal("failed to issue token", "error", err)
		}
		fmt.Println(resp.Token)

	default:
		fatal("unknown mode (use: api, hash-password, or token)", "mode", mode)
	}
}

func runAPI(ctx context.Context, cfg *config.Config) error {
	slog.Info("sercha-assist starting", "version", version, "environment", cfg.Server.Environment)

	// ===== Driven adapters (infrastructure) =====
	rateLimiter, rateBackend, err := newRateLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer rateLimiter.Close()

	chatLogs, logBackend, closeLogs, err := newChatLogStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLogs()

	runtimeConfig := domain.NewRuntimeConfig(rateBackend, logBackend)
	runtimeServices := runtime.NewServices(runtimeConfig)
	defer runtimeServices.Close()

	initLLM(ctx, cfg, runtimeServices)

	// ===== Corpus =====
	source := filesystem.NewDocumentSource(normalisers.DefaultRegistry())
	pipeline := postprocessors.DefaultPipeline(postprocessors.ChunkConfig{
		ChunkSize: cfg.Corpus.ChunkSize,
		Overlap:   cfg.Corpus.ChunkOverlap,
	})
	corpus := services.NewCorpusStore(services.CorpusStoreConfig{
		Source:   source,
		Pipeline: pipeline,
		DataPath: cfg.Corpus.DataPath,
		Runtime:  runtimeConfig,
		Logger:   slog.Default(),
	})

	// A failed initial load is retried lazily on the first request.
	if err := corpus.Load(ctx, cfg.Corpus.DataPath); err != nil {
		slog.Warn("initial corpus load failed", "path", cfg.Corpus.DataPath, "error", err)
	}

	// ===== Core services =====
	retriever := services.NewRetriever(services.RetrieverConfig{
		Corpus:   corpus,
		MinScore: cfg.Corpus.MinScore,
		Logger:   slog.Default(),
	})
	chat := services.NewChatService(services.ChatServiceConfig{
		Retriever:  retriever,
		Composer:   services.NewPromptComposer(cfg.Corpus.CompanyName),
		Services:   runtimeServices,
		ChatLogs:   chatLogs,
		TopK:       cfg.Corpus.TopK,
		Generation: cfg.LLM.Generation,
		Timeout:    cfg.LLM.Timeout,
		Logger:     slog.Default(),
	})
	admin := services.NewAdminService(auth.NewAdapter(cfg.Auth.JWTSecret), services.AdminServiceConfig{
		Username:     cfg.Auth.AdminUsername,
		PasswordHash: cfg.Auth.AdminPasswordHash,
		TokenTTL:     cfg.Auth.TokenTTL,
	})

	// ===== Background refresh =====
	stopRefresher, err := startRefresher(ctx, cfg.Corpus.RefreshSchedule, corpus)
	if err != nil {
		return err
	}
	defer stopRefresher()

	// ===== HTTP =====
	server := http.NewServer(http.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		Version:     version,
		Environment: cfg.Server.Environment,
		CORSOrigins: cfg.Server.CORSOrigins,
		TrustProxy:  cfg.Server.TrustProxy,
		SearchTopK:  cfg.Corpus.TopK,
	}, http.Dependencies{
		Corpus:      corpus,
		Retriever:   retriever,
		Chat:        chat,
		Admin:       admin,
		Runtime:     runtimeConfig,
		RateLimiter: rateLimiter,
		Logger:      slog.Default(),
	})

	slog.Info("API server starting", "addr", server.Addr(),
		"rate_limit", rateBackend, "chat_log", logBackend, "llm", cfg.LLM.Provider)
	return server.Start(ctx)
}

// startRefresher schedules corpus refreshes when a schedule is configured.
// The returned stop func is always safe to call.
func startRefresher(ctx context.Context, schedule string, corpus driving.CorpusService) (func(), error) {
	if schedule == "" {
		return func() {}, nil
	}

	refresher, err := worker.NewRefresher(worker.RefresherConfig{
		Corpus:   corpus,
		Schedule: schedule,
		Logger:   slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	if err := refresher.Start(ctx); err != nil {
		return nil, err
	}
	return refresher.Stop, nil
}

// newRateLimiter selects Redis when REDIS_URL is set, otherwise in-process buckets.
func newRateLimiter(ctx context.Context, cfg *config.Config) (driven.RateLimiter, string, error) {
	if cfg.RedisURL == "" {
		return memory.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst), "memory", nil
	}

	slog.Info("connecting to Redis")
	client, err := redisadapter.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, "", fmt.Errorf("redis: %w", err)
	}
	return redisadapter.NewRateLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window), "redis", nil
}

// newChatLogStore connects the audit trail when DATABASE_URL is set.
func newChatLogStore(ctx context.Context, cfg *config.Config) (driven.ChatLogStore, string, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, "none", func() {}, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := postgres.Open(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, "", nil, fmt.Errorf("postgres: %w", err)
	}
	return postgres.NewChatLogStore(db), "postgres", func() { _ = db.Close() }, nil
}

// initLLM builds the inference client and probes it. An unreachable service
// is still installed; readiness turns true once a probe or a chat succeeds.
func initLLM(ctx context.Context, cfg *config.Config, svcs *runtime.Services) {
	factory := ai.NewFactory()
	llm, err := factory.CreateLLMService(ctx, cfg.LLMSettings())
	if err != nil {
		slog.Error("inference service not configured", "provider", cfg.LLM.Provider,
			"supported", factory.Providers(), "error", err)
		return
	}
	if llm == nil {
		slog.Warn("inference service settings incomplete", "provider", cfg.LLM.Provider)
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := svcs.Install(probeCtx, llm); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, domain.ErrModelNotFound) {
			level = slog.LevelError
		}
		slog.Log(ctx, level, "inference service probe failed", "provider", cfg.LLM.Provider,
			"model", cfg.LLM.Model, "error", err)
		return
	}
	slog.Info("inference service ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
