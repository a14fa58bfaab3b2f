package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"hiring_pipeline_backend/internal/adapters"
	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/escalation"
	"hiring_pipeline_backend/internal/hiring/pipeline"
	hiringrepo "hiring_pipeline_backend/internal/hiring/repository"
	"hiring_pipeline_backend/internal/notification"
	"hiring_pipeline_backend/internal/notification/outbox"
	"hiring_pipeline_backend/internal/scheduler"
	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/db"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type idList []uuid.UUID

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid applicant id %q", v)
	}
	*l = append(*l, id)
	return nil
}

func main() {
	var ids idList
	var olderThan time.Duration
	var limit int
	flag.Var(&ids, "id", "applicant id to re-queue (repeatable)")
	flag.DurationVar(&olderThan, "older-than", 30*time.Minute, "re-queue parked applicants untouched for at least this long")
	flag.IntVar(&limit, "limit", 100, "maximum parked applicants to re-queue")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting parked applicant redrive", "ids", len(ids), "olderThan", olderThan.String(), "limit", limit)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	queue, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task queue", "error", err)
		panic("failed to initialize task queue: " + err.Error())
	}
	defer func() { _ = queue.Close() }()

	eventBus := events.NewInMemoryBus(log)
	scheduler.NewEventForwarder(queue).RegisterHandlers(eventBus)

	applicants := hiringrepo.New(pool)
	adapters.NewHiringTimelineWriter(applicants, log).RegisterHandlers(eventBus)
	notifier := notification.NewOutboxNotifier(outbox.New(pool), log)

	controller := pipeline.New(pipeline.Deps{
		Store:     applicants,
		Notifier:  notifier,
		Escalator: escalation.New(applicants, notifier, eventBus, log),
		Bus:       eventBus,
	}, pipeline.Options{
		VideoAppURL: cfg.GetVideoAppURL(),
		CalLink:     cfg.GetCalLink(),
	}, log)

	if len(ids) > 0 {
		failed := 0
		for _, id := range ids {
			if err := controller.Redrive(ctx, id); err != nil {
				failed++
				switch {
				case errors.Is(err, hiring.ErrNotFound):
					log.Warn("applicant not found", "applicantId", id)
				case errors.Is(err, hiring.ErrConflict):
					log.Warn("applicant is not parked", "applicantId", id)
				default:
					log.Error("redrive failed", "applicantId", id, "error", err)
				}
				continue
			}
			log.Info("applicant re-queued", "applicantId", id)
		}
		eventBus.Wait()
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	n, err := controller.RedriveParked(ctx, olderThan, limit)
	eventBus.Wait()
	if err != nil {
		log.Error("redrive parked applicants failed", "requeued", n, "error", err)
		os.Exit(1)
	}
	log.Info("redrive complete", "requeued", n)
}
