// Package notification queues pipeline notifications in the outbox and
// delivers them by email, with WhatsApp nudges for candidate invites.
package notification

import (
	"context"
	"time"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

// OutboxWriter stores a notification for later delivery.
type OutboxWriter interface {
	Insert(ctx context.Context, n hiring.Notification, runAt time.Time) (uuid.UUID, error)
}

// OutboxNotifier turns Notify calls into outbox rows. Delivery happens in
// the scheduler process, so callers never wait on a mail provider.
type OutboxNotifier struct {
	outbox OutboxWriter
	log    *logger.Logger
}

func NewOutboxNotifier(outbox OutboxWriter, log *logger.Logger) *OutboxNotifier {
	return &OutboxNotifier{outbox: outbox, log: log}
}

// Notify queues n. Failures are logged and never surface to the pipeline.
func (n *OutboxNotifier) Notify(ctx context.Context, note hiring.Notification) {
	if note.Template.CandidateFacing() {
		note.Vars = candidateVars(note.Vars)
	}

	id, err := n.outbox.Insert(ctx, note, time.Time{})
	if err != nil {
		attrs := []any{"template", string(note.Template), "audience", string(note.Audience), "error", err}
		if note.ApplicantID != nil {
			attrs = append(attrs, "applicant_id", note.ApplicantID.String())
		}
		n.log.WithContext(ctx).Error("failed to queue notification", attrs...)
		return
	}
	n.log.WithContext(ctx).Debug("notification queued", "outbox_id", id.String(), "template", string(note.Template))
}

// candidateVars keeps only the values a candidate email may show.
func candidateVars(vars map[string]string) map[string]string {
	link, ok := vars[hiring.VarLink]
	if !ok {
		return nil
	}
	return map[string]string{hiring.VarLink: link}
}
