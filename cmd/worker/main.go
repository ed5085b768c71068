package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/stockpinghq/stockping-backend/api/routes"
	"github.com/stockpinghq/stockping-backend/internal/alerts"
	"github.com/stockpinghq/stockping-backend/internal/cron"
	"github.com/stockpinghq/stockping-backend/internal/digest"
	"github.com/stockpinghq/stockping-backend/internal/sessions"
	"github.com/stockpinghq/stockping-backend/internal/tenants"
	"github.com/stockpinghq/stockping-backend/internal/thresholds"
	"github.com/stockpinghq/stockping-backend/internal/users"
	"github.com/stockpinghq/stockping-backend/pkg/config"
	"github.com/stockpinghq/stockping-backend/pkg/db"
	"github.com/stockpinghq/stockping-backend/pkg/email"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
	"github.com/stockpinghq/stockping-backend/pkg/metrics"
	"github.com/stockpinghq/stockping-backend/pkg/migrate"
	"github.com/stockpinghq/stockping-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	defer func() {
		closeErr := multierr.Append(dbClient.Close(), redisClient.Close())
		if closeErr != nil {
			logg.Error(context.Background(), "error closing clients", closeErr)
		}
	}()

	emailClient, err := email.NewSendgridClient(cfg.Sendgrid, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email client", err)
		os.Exit(1)
	}

	gate, err := thresholds.NewService(thresholds.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create threshold gate", err)
		os.Exit(1)
	}

	pipeline, err := digest.NewPipeline(digest.PipelineParams{
		Logger:  logg,
		Tenants: tenants.NewRepository(dbClient.DB()),
		Users:   users.NewRepository(dbClient.DB()),
		Alerts:  alerts.NewRepository(dbClient.DB()),
		Gate:    gate,
		Email:   emailClient,
		AppURL:  cfg.App.URL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create digest pipeline", err)
		os.Exit(1)
	}

	frequency, err := enums.ParseDigestFrequency(cfg.Digest.Frequency)
	if err != nil {
		logg.Error(context.Background(), "invalid digest frequency", err)
		os.Exit(1)
	}

	digestJob, err := digest.NewJob(digest.JobParams{
		Logger:    logg,
		Pipeline:  pipeline,
		Frequency: frequency,
		Metrics:   metrics.NewDigestMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create digest job", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	digestScheduler, err := newScheduler(logg, redisClient, jobMetrics, schedulerSetup{
		lockName:   "digest",
		interval:   cfg.Digest.Interval,
		runOnStart: cfg.Digest.RunOnStart,
		jobs:       []cron.Job{digestJob},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create digest scheduler", err)
		os.Exit(1)
	}

	sessionJob, err := cron.NewSessionCleanupJob(cron.SessionCleanupJobParams{
		Logger:     logg,
		Repository: sessions.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session cleanup job", err)
		os.Exit(1)
	}

	alertJob, err := cron.NewAlertCleanupJob(cron.AlertCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: alerts.NewRepository(dbClient.DB()),
		Retention:  cfg.Alerts.SentRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create alert cleanup job", err)
		os.Exit(1)
	}

	maintenanceScheduler, err := newScheduler(logg, redisClient, jobMetrics, schedulerSetup{
		lockName: "maintenance",
		interval: cfg.Sessions.CleanupInterval,
		jobs:     []cron.Job{sessionJob, alertJob},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance scheduler", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:  cfg,
			Logger:  logg,
			DB:      dbClient,
			Redis:   redisClient,
			Digest:  pipeline,
			Metrics: prometheus.DefaultGatherer,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"addr":        server.Addr,
	})
	logg.Info(ctx, "starting worker")

	digestScheduler.Start()
	maintenanceScheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logg.Error(ctx, "ops server stopped unexpectedly", err)
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	digestScheduler.Stop()
	maintenanceScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "ops server shutdown failed", err)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}

type schedulerSetup struct {
	lockName   string
	interval   time.Duration
	runOnStart bool
	jobs       []cron.Job
}

func newScheduler(logg *logger.Logger, redisClient *redis.Client, jobMetrics *metrics.JobMetrics, setup schedulerSetup) (*cron.Scheduler, error) {
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(setup.lockName), 0)
	if err != nil {
		return nil, err
	}
	return cron.NewScheduler(cron.SchedulerParams{
		Logger:     logg,
		Registry:   cron.NewRegistry(setup.jobs...),
		Lock:       lock,
		Metrics:    jobMetrics,
		Interval:   setup.interval,
		RunOnStart: setup.runOnStart,
	})
}
