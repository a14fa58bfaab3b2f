package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/notification/outbox"
	"hiring_pipeline_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func startRedis(t *testing.T) asynq.RedisClientOpt {
	t.Helper()
	mr := miniredis.RunT(t)
	return asynq.RedisClientOpt{Addr: mr.Addr()}
}

func pendingTasks(t *testing.T, opt asynq.RedisClientOpt, queue string) []*asynq.TaskInfo {
	t.Helper()
	inspector := asynq.NewInspector(opt)
	defer func() { _ = inspector.Close() }()
	tasks, err := inspector.ListPendingTasks(queue)
	if err != nil {
		t.Fatalf("expected pending tasks to be listable, got %v", err)
	}
	return tasks
}

func TestClientEnqueueApplicantCarriesOnlyID(t *testing.T) {
	opt := startRedis(t)
	client := newClient(opt, "hiring")
	defer func() { _ = client.Close() }()

	id := uuid.New()
	if err := client.EnqueueApplicant(context.Background(), TaskApplicationSubmitted, id); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	tasks := pendingTasks(t, opt, "hiring")
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskApplicationSubmitted {
		t.Fatalf("expected %s, got %s", TaskApplicationSubmitted, tasks[0].Type)
	}
	var payload map[string]any
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatalf("expected JSON payload, got %v", err)
	}
	if len(payload) != 1 || payload["applicantId"] != id.String() {
		t.Fatalf("expected payload with only the applicant id, got %v", payload)
	}
	if tasks[0].MaxRetry != pipelineMaxRetry {
		t.Fatalf("expected max retry %d, got %d", pipelineMaxRetry, tasks[0].MaxRetry)
	}	if tasks[0].Timeout != pipelineTaskTimeout {
		t.Fatalf("expected task timeout %s, got %s", pipelineTaskTimeout, tasks[0].Timeout)
	}
}

func TestNewApplicantTaskRejectsOtherTypes(t *testing.T) {
	if _, err := NewApplicantTask(TaskWeeklyDigest, uuid.New()); err == nil {
		t.Fatalf("expected digest type to be rejected")
	}
}

func TestParseApplicantPayloadRoundTrip(t *testing.T) {
	id := uuid.New()
	task, err := NewApplicantTask(TaskVideoCompleted, id)
	if err != nil {
		t.Fatalf("expected task, got %v", err)
	}
	got, err := ParseApplicantPayload(task)
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
}

type recordingEnqueuer struct {
	calls []string
	err   error
}

func (r *recordingEnqueuer) EnqueueApplicant(_ context.Context, taskType string, id uuid.UUID) error {
	r.calls = append(r.calls, taskType+" "+id.String())
	return r.err
}

func TestEventForwarderMapsWorkEvents(t *testing.T) {
	q := &recordingEnqueuer{}
	bus := events.NewInMemoryBus(logger.Nop())
	NewEventForwarder(q).RegisterHandlers(bus)

	id := uuid.New()
	ctx := context.Background()
	for _, e := range []events.Event{
		events.ApplicationSubmitted{ApplicantID: id},
		events.VideoCompleted{ApplicantID: id},
		events.InterviewRecorded{ApplicantID: id},
	} {
		if err := bus.PublishSync(ctx, e); err != nil {
			t.Fatalf("expected %s to forward, got %v", e.EventName(), err)
		}
	}

	want := []string{
		TaskApplicationSubmitted + " " + id.String(),
		TaskVideoCompleted + " " + id.String(),
		TaskInterviewScored + " " + id.String(),
	}
	if len(q.calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, q.calls)
	}
	for i := range want {
		if q.calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, q.calls)
		}
	}
}

func TestEventForwarderSurfacesEnqueueFailure(t *testing.T) {
	q := &recordingEnqueuer{err: errors.New("redis down")}
	bus := events.NewInMemoryBus(logger.Nop())
	NewEventForwarder(q).RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), events.ApplicationSubmitted{ApplicantID: uuid.New()}); err == nil {
		t.Fatalf("expected enqueue failure to reach the publisher")
	}
}

type fakeClaimer struct {
	records []outbox.Record
	pending []uuid.UUID
}

func (f *fakeClaimer) ClaimPending(context.Context, int) ([]outbox.Record, error) {
	out := f.records
	f.records = nil
	return out, nil
}

func (f *fakeClaimer) MarkPending(_ context.Context, id uuid.UUID, _ *string) error {
	f.pending = append(f.pending, id)
	return nil
}

func TestDispatcherQueuesOneTaskPerRow(t *testing.T) {
	opt := startRedis(t)
	repo := &fakeClaimer{records: []outbox.Record{
		{ID: uuid.New(), RunAt: time.Now().Add(-time.Minute)},
		{ID: uuid.New(), RunAt: time.Now().Add(-time.Second)},
	}}
	d := newNotificationOutboxDispatcher(opt, "", repo, logger.Nop())
	defer func() { _ = d.Close() }()

	if got := d.dispatch(context.Background()); got != 2 {
		t.Fatalf("expected 2 queued, got %d", got)
	}
	if len(repo.pending) != 0 {
		t.Fatalf("expected no rows returned to pending, got %d", len(repo.pending))
	}

	tasks := pendingTasks(t, opt, "default")
	if len(tasks) != 2 {
		t.Fatalf("expected 2 pending delivery tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.Type != TaskNotificationOutboxDue || task.MaxRetry != 0 {
			t.Fatalf("expected single-attempt %s, got %s with max retry %d", TaskNotificationOutboxDue, task.Type, task.MaxRetry)
		}
	}
}

type fakePipeline struct {
	calls []string
	err   error
}

func (f *fakePipeline) ProcessApplication(_ context.Context, id uuid.UUID) error {
	f.calls = append(f.calls, "application "+id.String())
	return f.err
}

func (f *fakePipeline) ProcessVideo(_ context.Context, id uuid.UUID) error {
	f.calls = append(f.calls, "video "+id.String())
	return f.err
}

func (f *fakePipeline) FinalizeDecision(_ context.Context, id uuid.UUID) error {
	f.calls = append(f.calls, "decision "+id.String())
	return f.err
}

func newTestWorker() (*Worker, *fakePipeline) {
	p := &fakePipeline{}
	w := &Worker{mux: asynq.NewServeMux(), bus: events.NewInMemoryBus(logger.Nop()), log: logger.Nop()}
	w.registerRoutes()
	w.SetPipeline(p)
	return w, p
}

func TestWorkerRoutesApplicantTasks(t *testing.T) {
	w, p := newTestWorker()
	id := uuid.New()
	for _, typ := range []string{TaskApplicationSubmitted, TaskVideoCompleted, TaskInterviewScored} {
		task, _ := NewApplicantTask(typ, id)
		if err := w.mux.ProcessTask(context.Background(), task); err != nil {
			t.Fatalf("expected %s to succeed, got %v", typ, err)
		}
	}
	want := []string{"application " + id.String(), "video " + id.String(), "decision " + id.String()}
	for i := range want {
		if p.calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, p.calls)
		}
	}
}

func TestWorkerPropagatesStorageErrorsForRetry(t *testing.T) {
	w, p := newTestWorker()
	p.err = errors.New("connection reset")
	task, _ := NewApplicantTask(TaskApplicationSubmitted, uuid.New())
	err := w.mux.ProcessTask(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestWorkerSkipsRetryOnBadPayload(t *testing.T) {
	w, _ := newTestWorker()
	err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskVideoCompleted, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestWorkerPublishesOutboxDue(t *testing.T) {
	w, _ := newTestWorker()
	var got uuid.UUID
	w.bus.(*events.InMemoryBus).Subscribe(events.NotificationOutboxDue{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got = e.(events.NotificationOutboxDue).OutboxID
		return nil
	}))

	id := uuid.New()
	task, _ := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{OutboxID: id.String()})
	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("expected delivery task to succeed, got %v", err)
	}
	if got != id {
		t.Fatalf("expected outbox id %s, got %s", id, got)
	}
}

type countingDigest struct{ calls int }

func (c *countingDigest) SendWeeklyDigest(context.Context) error {
	c.calls++
	return nil
}

func TestWorkerRunsWeeklyDigest(t *testing.T) {
	w, _ := newTestWorker()
	d := &countingDigest{}
	w.SetDigestSender(d)
	if err := w.mux.ProcessTask(context.Background(), NewWeeklyDigestTask()); err != nil {
		t.Fatalf("expected digest task to succeed, got %v", err)
	}
	if d.calls != 1 {
		t.Fatalf("expected 1 digest, got %d", d.calls)
	}
}

func TestRetryDelayIsBounded(t *testing.T) {
	if got := retryDelay(0, nil, nil); got != retryBaseDelay {
		t.Fatalf("expected %s, got %s", retryBaseDelay, got)
	}
	if got := retryDelay(2, nil, nil); got != 4*retryBaseDelay {
		t.Fatalf("expected %s, got %s", 4*retryBaseDelay, got)
	}
	if got := retryDelay(40, nil, nil); got != retryMaxDelay {
		t.Fatalf("expected %s, got %s", retryMaxDelay, got)
	}
}

type fakePurger struct{ cutoff time.Time }

func (f *fakePurger) DeleteDelivered(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

func TestOutboxCleanupUsesRetention(t *testing.T) {
	repo := &fakePurger{}
	c := NewOutboxCleanup(repo, logger.Nop(), 0, 48*time.Hour)
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.cleanup(context.Background())
	if want := now.Add(-48 * time.Hour); !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
	if c.interval != defaultOutboxCleanupInterval {
		t.Fatalf("expected default interval, got %s", c.interval)
	}
}

func TestPeriodicSchedulerRejectsUnknownTimezone(t *testing.T) {
	opt := startRedis(t)
	if _, err := newPeriodicScheduler(opt, "", "0 8 * * 1", "Mars/Olympus", logger.Nop()); err == nil {
		t.Fatalf("expected unknown timezone to fail")
	}
}

func TestPeriodicSchedulerRejectsBadCron(t *testing.T) {
	opt := startRedis(t)
	if _, err := newPeriodicScheduler(opt, "", "every monday", "America/Denver", logger.Nop()); err == nil {
		t.Fatalf("expected bad cron expression to fail")
	}
}

func TestPeriodicSchedulerRegistersDigest(t *testing.T) {
	opt := startRedis(t)
	p, err := newPeriodicScheduler(opt, "", "", "", logger.Nop())
	if err != nil {
		t.Fatalf("expected defaults to register, got %v", err)
	}
	if p.entryID == "" {
		t.Fatalf("expected an entry id")
	}
}
