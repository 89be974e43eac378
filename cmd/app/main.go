// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"lecture-summary/internal/config"
	"lecture-summary/internal/domain/ports/adapter"
	"lecture-summary/internal/domain/ports/repository"
	aiAdapters "lecture-summary/internal/infra/adapters/ai"
	"lecture-summary/internal/infra/adapters/echo360"
	"lecture-summary/internal/infra/api"
	pg "lecture-summary/internal/infra/db/postgres"
	"lecture-summary/internal/infra/logging"
	"lecture-summary/internal/infra/metrics"
	red "lecture-summary/internal/infra/redis"
	"lecture-summary/internal/infra/scheduler"
	"lecture-summary/internal/infra/worker"
	"lecture-summary/internal/usecase"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop provider allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetServiceInfo(version, cfg.AI.Provider, cfg.History.Backend)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	statusStore := red.NewStatusStore(redisClient, "")

	// ---- History backend ----
	var (
		historyRepo repository.HistoryRepository
		pool        *pgxpool.Pool
	)
	switch cfg.History.Backend {
	case "postgres":
		pool, err = pg.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		historyRepo = pg.NewHistoryRepo(pool, pg.NewTxManager(pool))
	default:
		historyRepo = red.NewHistoryRepo(redisClient, "")
	}

	// ---- Adapters ----
	fetcher := echo360.NewTranscriptFetcher(cfg.Transcript, logger)
	generator, err := aiAdapters.NewGenerator(cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai provider")
	}
	var counter adapter.TokenCounter
	if cfg.AI.TokenEncoding != "" {
		if c, err := aiAdapters.NewTiktokenCounter(cfg.AI.TokenEncoding); err != nil {
			logger.Warn().Err(err).Str("encoding", cfg.AI.TokenEncoding).Msg("prompt token estimates disabled")
		} else {
			counter = c
		}
	}
	logger.Info().
		Str("provider", generator.Provider()).
		Str("model", generator.Model()).
		Str("history", cfg.History.Backend).
		Msg("adapters ready")

	// ---- Worker pool ----
	workers := worker.NewPool(cfg.Generation.Workers, 0, logger)
	workers.Start(ctx)

	// ---- Use cases ----
	var guard repository.JobGuard = usecase.NewMemoryGuard()
	if cfg.Generation.DistributedLock {
		guard = red.NewJobLock(redisClient, "", cfg.Generation.LockTTL, logger)
	}
	historyUC := usecase.NewHistoryUseCase(historyRepo, cfg.History.Limit, logger)
	generationUC := usecase.NewGenerationUseCase(statusStore, fetcher, generator, counter, historyUC, guard, workers, logger)
	if err := generationUC.RecoverInterrupted(ctx); err != nil {
		logger.Error().Err(err).Msg("recover interrupted generation")
	}

	// ---- Gauges ----
	stats := scheduler.NewScheduler(15*time.Second, scheduler.CollectorFunc(func(ctx context.Context) error {
		if pool != nil {
			s := pool.Stat()
			metrics.SetHistoryPoolConns(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
		}
		entries, err := historyUC.List(ctx)
		if err != nil {
			return err
		}
		metrics.SetHistoryEntries(len(entries))
		return nil
	}), logger)
	stats.Start(ctx)

	// ---- HTTP API ----
	opts := api.Options{
		Limiter:         red.NewRateLimiter(redisClient, ""),
		SubmitPerMinute: cfg.HTTP.SubmitRateLimit,
		RequestTimeout:  cfg.HTTP.RequestTimeout,
	}
	if cfg.HTTP.AuthSecret != "" {
		opts.Auth = api.NewAuthManager(cfg.HTTP.AuthSecret, 0)
		logging.Component(logger, "Auth").Info().
			Str("secret", logging.Redact(cfg.HTTP.AuthSecret, cfg.Runtime.Dev)).
			Msg("bearer auth enabled for /api/v1")
	}
	srv := api.NewServer(generationUC, historyUC, opts, logger)
	server := api.NewHTTPServer(fmt.Sprintf(":%d", cfg.HTTP.Port), srv.Routes())
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http api listening")
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
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")
	shutdown(server, stats, workers, cancel, logger)
}

func shutdown(server *http.Server, stats *scheduler.Scheduler, workers *worker.Pool, cancel context.CancelFunc, logger *zerolog.Logger) {
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := server.Shutdown(sctx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	stats.Stop()
	// in-flight jobs see a cancelled ctx and record their error
	cancel()
	workers.Stop()
}
