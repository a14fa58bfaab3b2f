package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	retryBaseDelay = 10 * time.Second
	retryMaxDelay  = 10 * time.Minute
)

// PipelineProcessor runs the automated stages. It returns an error only for
// infrastructure failures worth retrying.
type PipelineProcessor interface {
	ProcessApplication(ctx context.Context, id uuid.UUID) error
	ProcessVideo(ctx context.Context, id uuid.UUID) error
	FinalizeDecision(ctx context.Context, id uuid.UUID) error
}

// DigestSender queues the weekly founder digest.
type DigestSender interface {
	SendWeeklyDigest(ctx context.Context) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	bus      events.Bus
	pipeline PipelineProcessor
	digest   DigestSender
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) (*Worker, error) {
	opt, err := connOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	w := &Worker{
		mux: asynq.NewServeMux(),
		bus: bus,
		log: log,
	}
	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg.GetAsynqQueueName()): 1,
		},
		RetryDelayFunc: retryDelay,
		ErrorHandler:   asynq.ErrorHandlerFunc(w.reportTaskError),
	})
	w.registerRoutes()

	return w, nil
}

func (w *Worker) registerRoutes() {
	w.mux.HandleFunc(TaskApplicationSubmitted, w.handleApplicant(func(p PipelineProcessor) func(context.Context, uuid.UUID) error {
		return p.ProcessApplication
	}))
	w.mux.HandleFunc(TaskVideoCompleted, w.handleApplicant(func(p PipelineProcessor) func(context.Context, uuid.UUID) error {
		return p.ProcessVideo
	}))
	w.mux.HandleFunc(TaskInterviewScored, w.handleApplicant(func(p PipelineProcessor) func(context.Context, uuid.UUID) error {
		return p.FinalizeDecision
	}))
	w.mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)
	w.mux.HandleFunc(TaskWeeklyDigest, w.handleWeeklyDigest)
}

func (w *Worker) SetPipeline(p PipelineProcessor) { w.pipeline = p }

func (w *Worker) SetDigestSender(d DigestSender) { w.digest = d }

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleApplicant(pick func(PipelineProcessor) func(context.Context, uuid.UUID) error) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		if w.pipeline == nil {
			return fmt.Errorf("pipeline not configured")
		}
		id, err := ParseApplicantPayload(task)
		if err != nil {
			return fmt.Errorf("%s: bad payload: %v: %w", task.Type(), err, asynq.SkipRetry)
		}
		return pick(w.pipeline)(ctx, id)
	}
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return fmt.Errorf("outbox task: bad payload: %v: %w", err, asynq.SkipRetry)
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return fmt.Errorf("outbox task: bad id: %v: %w", err, asynq.SkipRetry)
	}

	return w.bus.PublishSync(ctx, events.NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(),
		OutboxID:  outboxID,
	})
}

func (w *Worker) handleWeeklyDigest(ctx context.Context, _ *asynq.Task) error {
	if w.digest == nil {
		w.log.Warn("weekly digest fired but no digest sender configured")
		return nil
	}
	return w.digest.SendWeeklyDigest(ctx)
}

func (w *Worker) reportTaskError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	w.log.WithContext(ctx).Warn("task failed",
		"type", task.Type(),
		"retry", retried,
		"maxRetry", maxRetry,
		"error", err,
	)
}

// retryDelay backs off exponentially from retryBaseDelay up to retryMaxDelay.
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 0 {
		n = 0
	}
	d := time.Duration(float64(retryBaseDelay) * math.Pow(2, float64(n)))
	if d <= 0 || d > retryMaxDelay {
		return retryMaxDelay
	}
	return d
}
