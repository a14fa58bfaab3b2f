package hiring

import (
	"errors"
	"fmt"

	"hiring_pipeline_backend/platform/apperr"
)

var (
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateApplicant marks an application whose email already advanced
	// past pending_ai. It is a policy outcome and never reaches the client.
	ErrDuplicateApplicant = errors.New("duplicate applicant")
	// ErrScoring is wrapped by every *ScoringError.
	ErrScoring = errors.New("scoring failed")
	// ErrWebhookAuth is returned when a booking webhook signature does not verify.
	ErrWebhookAuth = errors.New("webhook signature mismatch")
	// ErrConflict means the applicant was not in the expected status when a
	// transition was attempted. Callers treat it as a benign no-op.
	ErrConflict = errors.New("applicant status changed concurrently")
	// ErrNotFound means no applicant matched.
	ErrNotFound = errors.New("applicant not found")
	// ErrInvalidTransition means the requested move is not in the FSM.
	ErrInvalidTransition = errors.New("illegal status transition")
	// ErrTokenMismatch means a video completion carried the wrong token.
	ErrTokenMismatch = errors.New("video token mismatch")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a *ValidationError.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ScoringError carries enough context to diagnose a failed provider call,
// including the raw (possibly partial) response.
type ScoringError struct {
	Stage    Stage
	Provider string
	Raw      string
	Err      error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s scoring via %s: %v", e.Stage, e.Provider, e.Err)
}

func (e *ScoringError) Unwrap() []error { return []error{ErrScoring, e.Err} }

// ToAppErr maps domain errors onto the HTTP error kinds. Errors outside the
// taxonomy are returned unchanged.
func ToAppErr(err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return apperr.Wrap(apperr.KindValidation, verr.Error(), err).WithDetails(map[string]string{"field": verr.Field})
	case errors.Is(err, ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, "applicant not found", err)
	case errors.Is(err, ErrWebhookAuth):
		return apperr.Wrap(apperr.KindUnauthorized, "invalid signature", err)
	case errors.Is(err, ErrTokenMismatch):
		return apperr.Wrap(apperr.KindForbidden, "invalid video link", err)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return apperr.Wrap(apperr.KindConflict, "applicant is not at this stage", err)
	case errors.Is(err, ErrScoring):
		return apperr.Wrap(apperr.KindUnavailable, "scoring unavailable", err)
	}
	return err
}
