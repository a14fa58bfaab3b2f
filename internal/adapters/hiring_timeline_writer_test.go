package adapters

import (
	"context"
	"errors"
	"testing"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type memTimeline struct {
	entries []hiring.TimelineEntry
	err     error
}

func (m *memTimeline) InsertTimeline(_ context.Context, e hiring.TimelineEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestTimelineWriterRecordsTransitions(t *testing.T) {
	store := &memTimeline{}
	bus := events.NewInMemoryBus(logger.Nop())
	NewHiringTimelineWriter(store, logger.Nop()).RegisterHandlers(bus)
	id := uuid.New()

	err := bus.PublishSync(context.Background(), events.ApplicantTransitioned{
		BaseEvent:   events.NewBaseEvent(),
		ApplicantID: id,
		From:        string(hiring.StatusPendingAI),
		To:          string(hiring.StatusVideoInvited),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	got := store.entries[0]
	if got.ApplicantID != id || got.EventType != TimelineTransition {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.FromStatus == nil || *got.FromStatus != "pending_ai" || got.ToStatus == nil || *got.ToStatus != "video_invited" {
		t.Fatalf("expected from/to statuses, got %+v", got)
	}
	if got.Summary != "pending_ai → video_invited" {
		t.Fatalf("expected default summary, got %q", got.Summary)
	}
}

func TestTimelineWriterRecordsApplicantEscalationsOnly(t *testing.T) {
	store := &memTimeline{}
	w := NewHiringTimelineWriter(store, logger.Nop())
	id := uuid.New()

	if err := w.Handle(context.Background(), events.EscalationRaised{Stage: "booking", Message: "bad signature"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := w.Handle(context.Background(), events.EscalationRaised{ApplicantID: &id, Stage: "video", Message: "scoring failed"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	if store.entries[0].Summary != "video: scoring failed" {
		t.Fatalf("unexpected summary %q", store.entries[0].Summary)
	}
}

func TestTimelineWriterPropagatesStoreErrors(t *testing.T) {
	store := &memTimeline{err: errors.New("insert failed")}
	w := NewHiringTimelineWriter(store, logger.Nop())

	err := w.Handle(context.Background(), events.ApplicantTransitioned{ApplicantID: uuid.New(), From: "a", To: "b"})
	if err == nil {
		t.Fatalf("expected store error")
	}
}
