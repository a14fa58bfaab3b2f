package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hiring_pipeline_backend/internal/adapters"
	"hiring_pipeline_backend/internal/adapters/storage"
	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/exports"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/escalation"
	hiringhandler "hiring_pipeline_backend/internal/hiring/handler"
	"hiring_pipeline_backend/internal/hiring/pipeline"
	hiringrepo "hiring_pipeline_backend/internal/hiring/repository"
	apphttp "hiring_pipeline_backend/internal/http"
	"hiring_pipeline_backend/internal/http/router"
	"hiring_pipeline_backend/internal/notification"
	"hiring_pipeline_backend/internal/notification/outbox"
	"hiring_pipeline_backend/internal/scheduler"
	"hiring_pipeline_backend/internal/webhook"
	"hiring_pipeline_backend/migrations"
	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/db"
	"hiring_pipeline_backend/platform/logger"
	"hiring_pipeline_backend/platform/retry"
	"hiring_pipeline_backend/platform/tracing"
	"hiring_pipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init(ctx, cfg, "api", log)
	defer func() { _ = shutdownTracing(context.Background()) }()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := retry.Run(ctx, log, "database migrations", retry.Startup, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	pool, err := retry.Do(ctx, log, "database connection", retry.Startup, func() (*pgxpool.Pool, error) {
		return db.NewPool(ctx, cfg)
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	queue, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task queue", "error", err)
		panic("failed to initialize task queue: " + err.Error())
	}
	defer func() { _ = queue.Close() }()
	scheduler.NewEventForwarder(queue).RegisterHandlers(eventBus)

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	buckets := storage.Buckets{Resumes: cfg.GetMinioBucketResumes(), Videos: cfg.GetMinioBucketVideos()}
	for _, bucket := range []string{buckets.Resumes, buckets.Videos} {
		if err := retry.Run(ctx, log, "ensure bucket "+bucket, retry.Startup, func() error {
			return storageSvc.EnsureBucketExists(ctx, bucket)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
	}
	log.Info("storage service initialized", "resumesBucket", buckets.Resumes, "videosBucket", buckets.Videos)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	applicants := hiringrepo.New(pool)
	notifier := notification.NewOutboxNotifier(outbox.New(pool), log)
	reporter := escalation.New(applicants, notifier, eventBus, log)

	adapters.NewHiringTimelineWriter(applicants, log).RegisterHandlers(eventBus)

	// Scoring runs in the scheduler; the API only accepts material and
	// moves applicants between human-driven stages.
	controller := pipeline.New(pipeline.Deps{
		Store:     applicants,
		Media:     storage.NewMedia(storageSvc, buckets, cfg.GetMediaMaxBytes(), cfg.GetResumeMaxBytes(), cfg.GetMediaDownloadTimeout()),
		Notifier:  notifier,
		Escalator: reporter,
		Tokens:    hiring.RandomTokens{},
		Bus:       eventBus,
	}, pipeline.Options{
		VideoAppURL: cfg.GetVideoAppURL(),
		CalLink:     cfg.GetCalLink(),
	}, log)

	hiringModule := hiringhandler.NewModule(hiringhandler.New(controller, applicants, storageSvc, buckets, val))
	webhookModule := webhook.NewModule(controller, reporter, cfg, log)
	exportsModule := exports.NewModule(exports.NewService(applicants, notifier, log))

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: []apphttp.HealthChecker{pool, queue},
		Modules: []apphttp.Module{
			hiringModule,
			webhookModule,
			exportsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
