// Command server starts the AI candidate ranking HTTP server.
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

	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/ai/openrouter"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/ai/stub"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/cache/redisq"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/events/kafka"
	httpserver "github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/observability"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/app"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/evaluate"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/extract"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/retry"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/runstate"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus collectors once per process so that /metrics
	// exposes HTTP, AI, and pipeline instrumentation.
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

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		slog.Error("profile load failed", slog.Any("error", err), slog.String("path", cfg.ProfilePath))
		os.Exit(1)
	}
	slog.Info("scoring profile loaded", slog.String("role", profile.Role.Title))

	ctx := context.Background()

	// Optional backends. Each is wired only when configured; the pipeline
	// and readiness probe treat a nil collaborator as disabled.
	var (
		archive     domain.RunArchive
		qcache      domain.QuestionCache
		events      domain.EventPublisher
		dbPinger    app.Pinger
		redisPinger app.Pinger
		kafkaPinger app.Pinger
	)

	if cfg.ArchiveEnabled() {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		repo := postgres.NewRunRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("db schema ensure failed", slog.Any("error", err))
			os.Exit(1)
		}
		archive = repo
		dbPinger = pool
		slog.Info("run archive enabled")
	}

	if cfg.QuestionCacheEnabled() {
		cache, err := redisq.New(cfg.RedisURL, cfg.QuestionCacheTTL)
		if err != nil {
			slog.Error("redis connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = cache.Close() }()
		qcache = cache
		redisPinger = cache
		slog.Info("question cache enabled", slog.Duration("ttl", cfg.QuestionCacheTTL))
	}

	if cfg.EventsEnabled() {
		pub, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			slog.Error("kafka connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = pub.Close() }()
		events = pub
		kafkaPinger = pub
		slog.Info("run events enabled", slog.String("topic", cfg.KafkaTopic))
	}

	// AI client. The stub keeps the binary usable offline; anything else
	// needs an OpenRouter key.
	var aicl domain.AIClient
	switch {
	case cfg.AIProvider == "stub":
		aicl = stub.New()
		slog.Info("using stub AI client")
	case cfg.OpenRouterAPIKey == "":
		aicl = stub.New()
		slog.Warn("OPENROUTER_API_KEY not set; falling back to stub AI client")
	default:
		aicl = openrouter.New(cfg)
	}
	slog.Info("AI client ready", slog.String("model", aicl.Model()))

	reg := runstate.NewRegistry()
	extractor := extract.NewSemantic(aicl, retry.Constant(cfg.ExtractMaxRetries, cfg.ExtractRetryDelay), profile, cfg.ChatMaxTokens)
	evaluator := evaluate.New(aicl, profile, cfg.ChatMaxTokens)

	pipeline := usecase.NewPipelineService(reg, extractor, evaluator, aicl, archive, events, cfg.BatchSize, cfg.OutputDir)
	results := usecase.NewResultService(reg, archive)
	questions := usecase.NewQuestionService(reg, evaluator, qcache)

	dbCheck, redisCheck, kafkaCheck := app.BuildReadinessChecks(dbPinger, redisPinger, kafkaPinger)

	srv := httpserver.NewServer(cfg, pipeline, results, questions, dbCheck, redisCheck, kafkaCheck)
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
	slog.Info("server stopped")
}
