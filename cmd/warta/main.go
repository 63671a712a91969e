package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/warta-media/warta/internal/ads"
	"github.com/warta-media/warta/internal/app"
	"github.com/warta-media/warta/internal/articles"
	"github.com/warta-media/warta/internal/auth"
	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/categories"
	"github.com/warta-media/warta/internal/comments"
	"github.com/warta-media/warta/internal/newspapers"
	"github.com/warta-media/warta/internal/observability"
	"github.com/warta-media/warta/internal/platform/cache"
	"github.com/warta-media/warta/internal/platform/db"
	"github.com/warta-media/warta/internal/shared"
	"github.com/warta-media/warta/internal/users"
	"github.com/warta-media/warta/jobs"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	gate := authz.Middleware{Verifier: tokens, Logger: logger, Metrics: metrics}
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, cfg.BcryptCost)
	authHandler := auth.NewHandler(logger, authService, metrics)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger, cfg.BcryptCost)
	usersHandler := users.NewHandler(logger, usersService, gate)

	articleCache := articles.NewCache(redisClient, cfg.ArticleCacheTTL)
	articlesRepo := articles.NewRepository(pool)
	articlesService := articles.NewService(articlesRepo, articleCache)
	articlesHandler := articles.NewHandler(logger, articlesService, gate)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService, gate)

	newspapersRepo := newspapers.NewRepository(pool)
	newspapersService := newspapers.NewService(newspapersRepo)
	newspapersHandler := newspapers.NewHandler(logger, newspapersService, gate)

	adsRepo := ads.NewRepository(pool)
	adsService := ads.NewService(adsRepo, auditLogger)
	adsHandler := ads.NewHandler(logger, adsService, gate)

	commentsRepo := comments.NewRepository(pool)
	commentsService := comments.NewService(commentsRepo)
	commentsHandler := comments.NewHandler(logger, commentsService, gate)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, gate, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		ArticlesHandler:   articlesHandler,
		CategoriesHandler: categoriesHandler,
		NewspapersHandler: newspapersHandler,
		AdsHandler:        adsHandler,
		CommentsHandler:   commentsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
