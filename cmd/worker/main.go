package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/warta-media/warta/internal/ads"
	"github.com/warta-media/warta/internal/app"
	"github.com/warta-media/warta/internal/articles"
	jobmetrics "github.com/warta-media/warta/internal/jobs"
	"github.com/warta-media/warta/internal/platform/cache"
	"github.com/warta-media/warta/internal/platform/db"
	"github.com/warta-media/warta/internal/shared"
	"github.com/warta-media/warta/jobs"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	adsRepo := ads.NewRepository(pool)
	adsService := ads.NewService(adsRepo, auditLogger)

	articleCache := articles.NewCache(redisClient, cfg.ArticleCacheTTL)
	articlesRepo := articles.NewRepository(pool)
	articlesService := articles.NewService(articlesRepo, articleCache)

	metrics := jobmetrics.NewMetrics(nil)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAdsExpire, Handler: jobs.HandleAdsExpire(adsService, logger, metrics)},
			{Type: jobs.TaskViewsFlush, Handler: jobs.HandleViewsFlush(articlesService, logger, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/10 * * * *", Task: jobs.NewAdsExpireTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/5 * * * *", Task: jobs.NewViewsFlushTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
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
