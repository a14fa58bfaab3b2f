// Package events provides the hiring domain events exchanged between the
// stage controller, the task forwarder and the timeline writer.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"hiring_pipeline_backend/platform/events"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus every binary wires its
// subscribers to.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Pipeline work events (each becomes one queued task)
// =============================================================================

// ApplicationSubmitted is published once a pending_ai record is stored.
type ApplicationSubmitted struct {
	BaseEvent
	ApplicantID uuid.UUID `json:"applicantId"`
}

func (e ApplicationSubmitted) EventName() string { return "hiring.application.submitted" }

// VideoCompleted is published once the applicant moved to video_scoring.
type VideoCompleted struct {
	BaseEvent
	ApplicantID uuid.UUID `json:"applicantId"`
}

func (e VideoCompleted) EventName() string { return "hiring.video.completed" }

// InterviewRecorded is published once interview scores moved the applicant
// to pending_decision.
type InterviewRecorded struct {
	BaseEvent
	ApplicantID uuid.UUID `json:"applicantId"`
}

func (e InterviewRecorded) EventName() string { return "hiring.interview.scored" }

// =============================================================================
// Audit events
// =============================================================================

// ApplicantTransitioned is published after a status change commits.
type ApplicantTransitioned struct {
	BaseEvent
	ApplicantID uuid.UUID `json:"applicantId"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Summary     string    `json:"summary,omitempty"`
}

func (e ApplicantTransitioned) EventName() string { return "hiring.applicant.transitioned" }

// EscalationRaised is published after a failure was reported to operators.
type EscalationRaised struct {
	BaseEvent
	ApplicantID *uuid.UUID `json:"applicantId,omitempty"`
	Stage       string     `json:"stage"`
	Message     string     `json:"message"`
}

func (e EscalationRaised) EventName() string { return "hiring.escalation.raised" }

// =============================================================================
// Notification delivery
// =============================================================================

// NotificationOutboxDue is published by the worker when an outbox row's
// delivery task runs.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
