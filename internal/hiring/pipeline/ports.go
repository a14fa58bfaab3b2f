// Package pipeline drives applicants through the hiring state machine. Each
// operation is a short-lived invocation keyed by applicant id that reloads
// state, performs at most one compare-and-set transition and then triggers
// notifications.
package pipeline

import (
	"context"
	"time"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/scoring"

	"github.com/google/uuid"
)

// Store persists applicants. Transition must be a compare-and-set on the
// current status and return hiring.ErrConflict when it no longer matches.
type Store interface {
	Create(ctx context.Context, in hiring.Intake) (hiring.Applicant, error)
	Get(ctx context.Context, id uuid.UUID) (hiring.Applicant, error)
	FindForBooking(ctx context.Context, email string) (hiring.Applicant, error)
	HasAdvancedDuplicate(ctx context.Context, email string, selfID uuid.UUID) (bool, error)
	Transition(ctx context.Context, id uuid.UUID, from hiring.Status, p hiring.Patch) (hiring.Applicant, error)
	ListParked(ctx context.Context, statuses []hiring.Status, cutoff time.Time, limit int) ([]hiring.Applicant, error)
}

// Scorer turns stage inputs into canonical scores.
type Scorer interface {
	ScoreApplication(ctx context.Context, in scoring.ApplicationInput) (hiring.Score, error)
	ScoreVideo(ctx context.Context, in scoring.VideoInput) (hiring.Score, error)
}

// Media downloads uploaded résumés and clips from object storage.
type Media interface {
	FetchResume(ctx context.Context, path string) ([]byte, error)
	FetchClip(ctx context.Context, path string) (scoring.Clip, error)
}

// Notifier records an outbound message. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n hiring.Notification)
}

// Escalator reports failures that need a human. It never fails the caller.
type Escalator interface {
	Report(ctx context.Context, applicantID *uuid.UUID, stage hiring.Stage, err error)
}
