// Command server starts the resume tailoring HTTP API.
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

	"github.com/joho/godotenv"

	"github.com/tailorhq/resume-tailor/internal/adapter/ai"
	"github.com/tailorhq/resume-tailor/internal/adapter/ai/openai"
	"github.com/tailorhq/resume-tailor/internal/adapter/httpserver"
	"github.com/tailorhq/resume-tailor/internal/adapter/observability"
	"github.com/tailorhq/resume-tailor/internal/app"
	"github.com/tailorhq/resume-tailor/internal/config"
	"github.com/tailorhq/resume-tailor/internal/domain"
	"github.com/tailorhq/resume-tailor/internal/usecase"
)

func main() {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
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

	if cfg.OpenAIAPIKey == "" {
		// Startup proceeds so /healthz and /metrics stay up; the API
		// endpoints answer SERVER_MISCONFIG until the key is provided.
		slog.Warn("OPENAI_API_KEY not set; scoring and rewrite will fail")
	}

	var client domain.AIClient = openai.New(cfg)
	store := buildResponseStore(cfg)
	client = ai.NewCached(client, store)

	analyzeSvc := usecase.NewAnalyzeService(client, cfg)
	rewriteSvc := usecase.NewRewriteService(client, cfg)

	srv := httpserver.NewServer(cfg, analyzeSvc, rewriteSvc)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("gap_schema", cfg.GapSchema))
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

// buildResponseStore picks Redis when configured, otherwise the in-process
// FIFO cache.
func buildResponseStore(cfg config.Config) ai.ResponseStore {
	if cfg.RedisURL != "" {
		store, err := ai.NewRedisStore(cfg.RedisURL, cfg.AnalysisCacheTTL)
		if err != nil {
			slog.Error("redis cache unavailable, falling back to memory", slog.Any("error", err))
		} else {
			slog.Info("using redis response cache")
			return store
		}
	}
	return ai.NewMemoryStore(cfg.AnalysisCacheSize)
}
