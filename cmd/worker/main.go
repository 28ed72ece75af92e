package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/trimm-medical/magconfig/internal/app"
	"github.com/trimm-medical/magconfig/internal/catalog"
	"github.com/trimm-medical/magconfig/internal/platform/cache"
	"github.com/trimm-medical/magconfig/internal/platform/db"
	"github.com/trimm-medical/magconfig/internal/schema"
	"github.com/trimm-medical/magconfig/internal/templates"
	"github.com/trimm-medical/magconfig/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, snapshot cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	inspector := schema.NewInspector(pool)
	resolver := schema.NewResolver(inspector, cfg.SchemaConfig(), logger)

	catalogRepo := catalog.NewRepository(pool, resolver)
	catalogCache := catalog.NewCache(redisClient, cfg.SnapshotTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, logger)

	templatesRepo := templates.NewRepository(pool, resolver)
	templatesService := templates.NewService(templatesRepo, nil, logger)

	reindexJob := jobs.NewCatalogReindexJob(catalogService, templatesService, logger)

	reindexTask, err := jobs.NewCatalogReindexTask("cron")
	if err != nil {
		logger.Error("build reindex task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCatalogReindex, Handler: reindexJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ReindexCronSpec, Task: reindexTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
