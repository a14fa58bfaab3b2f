// Package escalation reports pipeline failures to operators. Reporting is
// best-effort throughout: nothing here returns an error to the caller.
package escalation

import (
	"context"
	"errors"
	"time"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/logger"
	"hiring_pipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	messageRunes = 1000
	writeTimeout = 5 * time.Second
)

// Recorder persists escalations for the admin audit list.
type Recorder interface {
	InsertEscalation(ctx context.Context, e hiring.Escalation) error
}

// Notifier queues the operator alert.
type Notifier interface {
	Notify(ctx context.Context, n hiring.Notification)
}

// Reporter logs, records and alerts on failures.
type Reporter struct {
	recorder Recorder
	notifier Notifier
	bus      events.Bus
	log      *logger.Logger
}

// New creates a Reporter. Any collaborator may be nil.
func New(recorder Recorder, notifier Notifier, bus events.Bus, log *logger.Logger) *Reporter {
	return &Reporter{recorder: recorder, notifier: notifier, bus: bus, log: log}
}

// Report records one failure. applicantID is nil for failures not tied to an
// applicant, such as a webhook with a bad signature.
func (r *Reporter) Report(ctx context.Context, applicantID *uuid.UUID, stage hiring.Stage, err error) {
	if err == nil {
		return
	}
	e := build(applicantID, stage, err)

	attrs := []any{"stage", string(stage), "error_kind", e.ErrorKind, "error", err.Error()}
	if applicantID != nil {
		attrs = append(attrs, "applicant_id", applicantID.String())
	}
	if e.Provider != nil {
		attrs = append(attrs, "provider", *e.Provider)
	}
	if e.RawExcerpt != nil {
		attrs = append(attrs, "raw_excerpt", sanitize.Truncate(*e.RawExcerpt, 500))
	}
	r.log.WithContext(ctx).Error("pipeline escalation", attrs...)

	// The caller's context may already be expired by the failure we report.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if r.recorder != nil {
		r.safely("record", func() error { return r.recorder.InsertEscalation(writeCtx, e) })
	}
	if r.notifier != nil {
		vars := map[string]string{hiring.VarErrorMessage: e.Message}
		if e.Provider != nil {
			vars[hiring.VarErrorProvider] = *e.Provider
		}
		r.safely("notify", func() error {
			r.notifier.Notify(writeCtx, hiring.Notification{
				Template:    hiring.TemplateEscalation,
				Audience:    hiring.AudienceOperators,
				ApplicantID: applicantID,
				Stage:       stage,
				Vars:        vars,
			})
			return nil
		})
	}
	if r.bus != nil {
		r.safely("publish", func() error {
			r.bus.Publish(writeCtx, events.EscalationRaised{
				BaseEvent:   events.NewBaseEvent(),
				ApplicantID: applicantID,
				Stage:       string(stage),
				Message:     e.Message,
			})
			return nil
		})
	}
}

func (r *Reporter) safely(step string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("escalation step panicked", "step", step, "panic", rec)
		}
	}()
	if err := fn(); err != nil {
		r.log.Error("escalation step failed", "step", step, "error", err)
	}
}

func build(applicantID *uuid.UUID, stage hiring.Stage, err error) hiring.Escalation {
	e := hiring.Escalation{
		ApplicantID: applicantID,
		Stage:       stage,
		ErrorKind:   Kind(err),
		Message:     sanitize.Truncate(err.Error(), messageRunes),
	}
	var serr *hiring.ScoringError
	if errors.As(err, &serr) {
		provider := serr.Provider
		e.Provider = &provider
		if serr.Raw != "" {
			raw := serr.Raw
			e.RawExcerpt = &raw
		}
	}
	return e
}

// Kind classifies err for the escalation record.
func Kind(err error) string {
	switch {
	case errors.Is(err, hiring.ErrScoring):
		return "scoring"
	case errors.Is(err, hiring.ErrValidation):
		return "validation"
	case errors.Is(err, hiring.ErrWebhookAuth):
		return "webhook_auth"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "internal"
}
