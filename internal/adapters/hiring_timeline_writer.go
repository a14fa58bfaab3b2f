package adapters

import (
	"context"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/logger"
)

// TimelineStore persists applicant audit entries.
type TimelineStore interface {
	InsertTimeline(ctx context.Context, e hiring.TimelineEntry) error
}

// Timeline event types.
const (
	TimelineTransition = "status_changed"
	TimelineEscalation = "escalation"
)

// HiringTimelineWriter records status changes and escalations on the
// applicant timeline shown in the admin console.
type HiringTimelineWriter struct {
	store TimelineStore
	log   *logger.Logger
}

// NewHiringTimelineWriter creates a new timeline writer.
func NewHiringTimelineWriter(store TimelineStore, log *logger.Logger) *HiringTimelineWriter {
	return &HiringTimelineWriter{store: store, log: log}
}

// RegisterHandlers subscribes the writer to the audit events.
func (w *HiringTimelineWriter) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ApplicantTransitioned{}.EventName(), w)
	bus.Subscribe(events.EscalationRaised{}.EventName(), w)
}

// Handle implements events.Handler.
func (w *HiringTimelineWriter) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ApplicantTransitioned:
		from, to := e.From, e.To
		summary := e.Summary
		if summary == "" {
			summary = from + " → " + to
		}
		return w.write(ctx, hiring.TimelineEntry{
			ApplicantID: e.ApplicantID,
			EventType:   TimelineTransition,
			FromStatus:  &from,
			ToStatus:    &to,
			Summary:     summary,
		})
	case events.EscalationRaised:
		if e.ApplicantID == nil {
			return nil
		}
		return w.write(ctx, hiring.TimelineEntry{
			ApplicantID: *e.ApplicantID,
			EventType:   TimelineEscalation,
			Summary:     e.Stage + ": " + e.Message,
		})
	}
	return nil
}

func (w *HiringTimelineWriter) write(ctx context.Context, entry hiring.TimelineEntry) error {
	if err := w.store.InsertTimeline(ctx, entry); err != nil {
		w.log.WithContext(ctx).Error("failed to write timeline entry",
			"applicant_id", entry.ApplicantID.String(),
			"event_type", entry.EventType,
			"error", err,
		)
		return err
	}
	return nil
}

// Compile-time check.
var _ events.Handler = (*HiringTimelineWriter)(nil)
