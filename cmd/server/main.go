// Command server starts the AI Interview Coach HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	ai "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai/tokencount"
	rediscache "github.com/fairyhunter13/ai-interview-coach/internal/adapter/cache/redis"
	httpserver "github.com/fairyhunter13/ai-interview-coach/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-coach/internal/app"
	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP and AI instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(pool)
	interviewRepo := postgres.NewInterviewRepo(pool)

	// Optional question cache
	var cache domain.QuestionCache
	var cachePing func(ctx context.Context) error
	if cfg.QuestionCacheEnabled() {
		rc, err := rediscache.New(cfg.RedisURL, cfg.QuestionCacheTTL)
		if err != nil {
			slog.Error("redis connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		cache = rc
		cachePing = rc.Ping
		slog.Info("question cache enabled", slog.Duration("ttl", cfg.QuestionCacheTTL))
	}

	// AI client
	aicl, err := gemini.New(ctx, cfg)
	if err != nil {
		slog.Error("gemini client init failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("AI client initialized", slog.String("model", aicl.Model()))

	// Prompt templates, optionally overridden from file
	promptCfg, err := config.LoadPromptConfig(cfg.PromptsFile)
	if err != nil {
		slog.Error("prompt config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	prompts, err := ai.NewPromptBuilder(promptCfg)
	if err != nil {
		slog.Error("prompt templates invalid", slog.Any("error", err))
		os.Exit(1)
	}

	// Usecases
	authSvc := usecase.NewAuthService(userRepo)
	evalSvc := usecase.NewEvaluateService(aicl, prompts, tokencount.NewCounter(), cfg)
	genSvc := usecase.NewGenerateService(aicl, prompts, cache, cfg)
	sessionSvc := usecase.NewSessionService(interviewRepo)

	// HTTP server
	srv := httpserver.NewServer(cfg, authSvc, evalSvc, genSvc, sessionSvc)
	srv.DBPing = pool.Ping
	srv.CachePing = cachePing

	// otelhttp wraps the router so incoming trace context propagates into
	// the per-request spans.
	handler := otelhttp.NewHandler(app.BuildRouter(cfg, srv), "http.server")

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
