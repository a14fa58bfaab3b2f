package pipeline

import (
	"context"

	"hiring_pipeline_backend/internal/hiring"

	"github.com/google/uuid"
)

// DuplicateFinder is the storage query behind the Guard.
type DuplicateFinder interface {
	HasAdvancedDuplicate(ctx context.Context, email string, selfID uuid.UUID) (bool, error)
}

// Guard rejects repeat applications from an email that already advanced past
// pending_ai. It is a best-effort check, not a lock: two simultaneous first
// applications can both pass.
type Guard struct {
	finder DuplicateFinder
}

// NewGuard creates a Guard over finder.
func NewGuard(finder DuplicateFinder) *Guard {
	return &Guard{finder: finder}
}

// IsDuplicate reports whether another applicant with email has advanced.
func (g *Guard) IsDuplicate(ctx context.Context, email string, selfID uuid.UUID) (bool, error) {
	email = hiring.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	return g.finder.HasAdvancedDuplicate(ctx, email, selfID)
}
