package scheduler

import (
	"context"
	"fmt"

	"hiring_pipeline_backend/internal/events"

	"github.com/google/uuid"
)

// Enqueuer queues pipeline tasks.
type Enqueuer interface {
	EnqueueApplicant(ctx context.Context, taskType string, applicantID uuid.UUID) error
}

// EventForwarder turns pipeline work events into queued tasks. It is
// subscribed synchronously so a failed enqueue surfaces to the publisher.
type EventForwarder struct {
	queue Enqueuer
}

func NewEventForwarder(queue Enqueuer) *EventForwarder {
	return &EventForwarder{queue: queue}
}

// RegisterHandlers subscribes the forwarder to every work event.
func (f *EventForwarder) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ApplicationSubmitted{}.EventName(), f)
	bus.Subscribe(events.VideoCompleted{}.EventName(), f)
	bus.Subscribe(events.InterviewRecorded{}.EventName(), f)
}

func (f *EventForwarder) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ApplicationSubmitted:
		return f.queue.EnqueueApplicant(ctx, TaskApplicationSubmitted, e.ApplicantID)
	case events.VideoCompleted:
		return f.queue.EnqueueApplicant(ctx, TaskVideoCompleted, e.ApplicantID)
	case events.InterviewRecorded:
		return f.queue.EnqueueApplicant(ctx, TaskInterviewScored, e.ApplicantID)
	default:
		return fmt.Errorf("no task for event %s", event.EventName())
	}
}
