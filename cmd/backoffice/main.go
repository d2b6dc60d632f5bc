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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-travel/backoffice/internal/admin"
	"github.com/meridian-travel/backoffice/internal/app"
	"github.com/meridian-travel/backoffice/internal/archive"
	"github.com/meridian-travel/backoffice/internal/booking"
	"github.com/meridian-travel/backoffice/internal/dashboard"
	dashboardhttp "github.com/meridian-travel/backoffice/internal/dashboard/http"
	"github.com/meridian-travel/backoffice/internal/observability"
	"github.com/meridian-travel/backoffice/internal/reconcile"
	reconcilehttp "github.com/meridian-travel/backoffice/internal/reconcile/http"
	"github.com/meridian-travel/backoffice/internal/shared"
	"github.com/meridian-travel/backoffice/internal/upstream"
	"github.com/meridian-travel/backoffice/jobs"
)

// paymentNotifier invalidates the dashboard cache and schedules a background
// rebuild so the next interactive read is warm.
type paymentNotifier struct {
	dashboard *dashboard.Service
	jobs      *jobs.Client
	logger    *slog.Logger
}

func (n *paymentNotifier) PaymentUpdated(ctx context.Context) {
	n.dashboard.PaymentUpdated(ctx)
	if n.jobs == nil {
		return
	}
	if _, err := n.jobs.EnqueueDashboardWarmup(ctx, jobs.DashboardWarmupPayload{Reason: "payment updated"}); err != nil {
		n.logger.Warn("enqueue dashboard warmup", slog.Any("error", err))
	}
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamToken, cfg.UpstreamTimeout, logger)

	aggregator := booking.NewAggregator(client, cfg.Banks, logger, metrics)
	cache := dashboard.NewCache(redisClient, cfg.CacheTTL)
	if err := cache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	dashboardService := dashboard.NewService(aggregator, cache, logger)
	dashboardHandler := dashboardhttp.NewHandler(logger, dashboardService, client)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("build job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	journal := reconcile.NewRepository(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	reconcileService := reconcile.NewService(client, journal, reconcile.ServiceParams{
		Locks:       shared.NewKeyedMutex(),
		Idempotency: idempotencyStore,
		Notifier:    &paymentNotifier{dashboard: dashboardService, jobs: jobClient, logger: logger},
		Logger:      logger,
		Metrics:     metrics,
	})
	reconcileHandler := reconcilehttp.NewHandler(logger, reconcileService, journal)

	archiveHandler := archive.NewHandler(logger, client)
	adminHandler := admin.NewHandler(logger, client)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		ReconcileHandler: reconcileHandler,
		ArchiveHandler:   archiveHandler,
		AdminHandler:     adminHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
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
