package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/trimm-medical/magconfig/internal/admin"
	"github.com/trimm-medical/magconfig/internal/app"
	"github.com/trimm-medical/magconfig/internal/catalog"
	"github.com/trimm-medical/magconfig/internal/export"
	"github.com/trimm-medical/magconfig/internal/platform/cache"
	"github.com/trimm-medical/magconfig/internal/platform/db"
	"github.com/trimm-medical/magconfig/internal/quote"
	"github.com/trimm-medical/magconfig/internal/schema"
	"github.com/trimm-medical/magconfig/internal/templates"
	"github.com/trimm-medical/magconfig/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	if err := catalogService.Warm(ctx); err != nil {
		logger.Warn("catalog warmup", slog.Any("error", err))
	}
	catalogHandler := catalog.NewHandler(logger, catalogService)

	quoteStore := quote.NewStore(cfg.QuoteSessionTTL)
	quoteService := quote.NewService(quoteStore, catalogService, logger)
	quoteHandler := quote.NewHandler(logger, quoteService)

	templatesRepo := templates.NewRepository(pool, resolver)
	templatesService := templates.NewService(templatesRepo, quoteService, logger)
	templatesHandler := templates.NewHandler(logger, templatesService)

	exporter := export.NewExporter(cfg.ExportTemplate, logger)
	exportHandler := export.NewHandler(logger, exporter, quoteService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	adminService := admin.NewService(pool, inspector, logger)
	adminHandler := admin.NewHandler(logger, adminService, func(ctx context.Context, table string) {
		if _, err := jobsClient.EnqueueCatalogReindex(ctx, "admin:"+table); err != nil {
			logger.Warn("enqueue catalog reindex", slog.Any("error", err))
		}
	})

	queueInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueInspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(queueInspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalogHandler,
		QuoteHandler:     quoteHandler,
		TemplatesHandler: templatesHandler,
		ExportHandler:    exportHandler,
		AdminHandler:     adminHandler,
		JobHandler:       jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
