package scheduler

import (
	"context"
	"fmt"
	"time"

	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const (
	defaultDigestCron     = "0 8 * * 1"
	defaultDigestTimezone = "America/Denver"
)

// PeriodicScheduler enqueues the weekly digest on its cron schedule.
type PeriodicScheduler struct {
	scheduler *asynq.Scheduler
	entryID   string
	log       *logger.Logger
}

func NewPeriodicScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*PeriodicScheduler, error) {
	opt, err := connOpt(cfg)
	if err != nil {
		return nil, err
	}

	return newPeriodicScheduler(opt, cfg.GetAsynqQueueName(), cfg.GetDigestCron(), cfg.GetDigestTimezone(), log)
}

func newPeriodicScheduler(opt asynq.RedisConnOpt, queue, cron, timezone string, log *logger.Logger) (*PeriodicScheduler, error) {
	loc, err := digestLocation(timezone)
	if err != nil {
		return nil, err
	}
	if cron == "" {
		cron = defaultDigestCron
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: loc,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic enqueue failed", "error", err)
				return
			}
			log.Info("periodic task enqueued", "type", info.Type, "taskId", info.ID)
		},
	})

	entryID, err := s.Register(cron, NewWeeklyDigestTask(), asynq.Queue(queueName(queue)), asynq.MaxRetry(3))
	if err != nil {
		return nil, fmt.Errorf("register weekly digest %q: %w", cron, err)
	}

	return &PeriodicScheduler{scheduler: s, entryID: entryID, log: log}, nil
}

func digestLocation(name string) (*time.Location, error) {
	if name == "" {
		name = defaultDigestTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load digest timezone %q: %w", name, err)
	}
	return loc, nil
}

func (p *PeriodicScheduler) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	p.log.Info("periodic scheduler started", "entryId", p.entryID)

	<-ctx.Done()
	p.scheduler.Shutdown()
}
