package hiring

import (
	"time"

	"github.com/google/uuid"
)

// Escalation is one failure reported to operators.
type Escalation struct {
	ID          uuid.UUID  `json:"id"`
	ApplicantID *uuid.UUID `json:"applicantId,omitempty"`
	Stage       Stage      `json:"stage"`
	ErrorKind   string     `json:"errorKind"`
	Message     string     `json:"message"`
	Provider    *string    `json:"provider,omitempty"`
	RawExcerpt  *string    `json:"rawExcerpt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TimelineEntry is one audit line in an applicant's history.
type TimelineEntry struct {
	ID          uuid.UUID `json:"id"`
	ApplicantID uuid.UUID `json:"applicantId"`
	EventType   string    `json:"eventType"`
	FromStatus  *string   `json:"fromStatus,omitempty"`
	ToStatus    *string   `json:"toStatus,omitempty"`
	Summary     string    `json:"summary"`
	CreatedAt   time.Time `json:"createdAt"`
}
