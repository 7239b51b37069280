// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-subtitle-translator/internal/config"
	aiAdapters "video-subtitle-translator/internal/infra/adapters/ai"
	pg "video-subtitle-translator/internal/infra/db/postgres"
	"video-subtitle-translator/internal/infra/logging"
	"video-subtitle-translator/internal/infra/media"
	"video-subtitle-translator/internal/infra/metrics"
	red "video-subtitle-translator/internal/infra/redis"
	"video-subtitle-translator/internal/infra/web"
	"video-subtitle-translator/internal/infra/worker"
	"video-subtitle-translator/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	taskCache := red.NewTaskCache(redisClient, cfg.Redis.TTL)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	taskRepo := pg.NewPostgresTaskRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Adapters ----
	ai, err := aiAdapters.NewOpenAIAdapter(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.APIBase, cfg.AI.Temperature)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai adapter")
	}
	mediaTools := media.NewTools(cfg.Media, logger)

	// ---- Shared translation worker pool ----
	chunkPool := worker.NewPool(cfg.Translate.Workers, logger)
	chunkPool.Start(ctx)
	defer chunkPool.Stop()

	// ---- Use cases ----
	translationUC := usecase.NewTranslationUseCase(
		ai, chunkPool, cfg.AI.Model,
		cfg.Translate.ChunkSize, cfg.Translate.MaxRetries, cfg.Translate.RetryDelay,
		logger,
	)
	billingUC := usecase.NewBillingUseCase(userRepo, tm, cfg.Billing.UnitPriceCents, logger)
	taskUC := usecase.NewTaskUseCase(taskRepo, taskCache, logger)
	pipelineUC := usecase.NewPipelineUseCase(
		taskRepo, taskCache, mediaTools, translationUC, billingUC, locker,
		usecase.PipelineOptions{
			TargetLanguage: cfg.Translate.TargetLanguage,
			WorkDir:        cfg.Media.WorkDir,
			Summarize:      cfg.Translate.Summarize,
			BurnIn:         cfg.Translate.BurnIn,
		},
		logger,
	)
	pipelineUC.Start(ctx)

	// ---- HTTP ----
	server := web.NewServer(cfg.Server.Port, taskUC, pipelineUC, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	// Cancel in-flight stages, then wait for each pipeline to persist its
	// final task status before exit.
	cancel()
	pipelineUC.Wait()
	logger.Info().Msg("goodbye")
}
