package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hiring_pipeline_backend/internal/adapters"
	"hiring_pipeline_backend/internal/adapters/storage"
	"hiring_pipeline_backend/internal/email"
	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/exports"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/escalation"
	"hiring_pipeline_backend/internal/hiring/pipeline"
	hiringrepo "hiring_pipeline_backend/internal/hiring/repository"
	"hiring_pipeline_backend/internal/hiring/scoring"
	"hiring_pipeline_backend/internal/notification"
	"hiring_pipeline_backend/internal/notification/outbox"
	"hiring_pipeline_backend/internal/scheduler"
	"hiring_pipeline_backend/internal/whatsapp"
	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/db"
	"hiring_pipeline_backend/platform/logger"
	"hiring_pipeline_backend/platform/retry"
	"hiring_pipeline_backend/platform/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init(ctx, cfg, "scheduler", log)
	defer func() { _ = shutdownTracing(context.Background()) }()

	pool, err := retry.Do(ctx, log, "database connection", retry.Startup, func() (*pgxpool.Pool, error) {
		return db.NewPool(ctx, cfg)
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

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
	media := storage.NewMedia(storageSvc, buckets, cfg.GetMediaMaxBytes(), cfg.GetResumeMaxBytes(), cfg.GetMediaDownloadTimeout())

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	rubric := hiring.DefaultRubric()
	scorer, err := scoring.NewFromConfig(ctx, cfg, rubric, log)
	if err != nil {
		log.Error("failed to initialize scoring providers", "error", err)
		panic("failed to initialize scoring providers: " + err.Error())
	}

	applicants := hiringrepo.New(pool)
	outboxRepo := outbox.New(pool)
	notifier := notification.NewOutboxNotifier(outboxRepo, log)
	reporter := escalation.New(applicants, notifier, eventBus, log)
	digests := exports.NewService(applicants, notifier, log)

	adapters.NewHiringTimelineWriter(applicants, log).RegisterHandlers(eventBus)

	notificationModule := notification.New(notification.Deps{
		Outbox:     outboxRepo,
		Applicants: applicants,
		Sender:     sender,
		Media:      media,
		Workbooks:  digests,
		WhatsApp:   whatsapp.NewClient(cfg, log),
	}, notification.Options{
		FounderEmails:  cfg.GetFounderEmails(),
		OperatorEmails: cfg.GetOperatorEmails(),
		CompanyName:    cfg.GetCompanyName(),
		DossierLinkTTL: cfg.GetDossierLinkTTL(),
		Rubric:         rubric,
	}, log)
	notificationModule.RegisterHandlers(eventBus)

	controller := pipeline.New(pipeline.Deps{
		Store:     applicants,
		Scorer:    scorer,
		Media:     media,
		Notifier:  notifier,
		Escalator: reporter,
		Tokens:    hiring.RandomTokens{},
		Bus:       eventBus,
	}, pipeline.Options{
		VideoAppURL: cfg.GetVideoAppURL(),
		CalLink:     cfg.GetCalLink(),
	}, log)

	dispatcher, err := scheduler.NewNotificationOutboxDispatcher(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize outbox dispatcher", "error", err)
		panic("failed to initialize outbox dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()
	go dispatcher.Run(ctx)

	go scheduler.NewOutboxCleanup(outboxRepo, log, 0, cfg.GetOutboxRetention()).Run(ctx)

	periodic, err := scheduler.NewPeriodicScheduler(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go periodic.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	worker.SetPipeline(controller)
	worker.SetDigestSender(digests)

	worker.Run(ctx)
	eventBus.Wait()
}
