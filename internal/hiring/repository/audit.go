package repository

import (
	"context"
	"fmt"

	"hiring_pipeline_backend/internal/hiring"

	"github.com/google/uuid"
)

// InsertEscalation records a reported failure.
func (r *Repository) InsertEscalation(ctx context.Context, e hiring.Escalation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hiring_escalations (applicant_id, stage, error_kind, message, provider, raw_excerpt)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ApplicantID, string(e.Stage), e.ErrorKind, e.Message, e.Provider, e.RawExcerpt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert escalation: %w", err)
	}
	return nil
}

// ListEscalations returns the newest escalations, optionally for one applicant.
func (r *Repository) ListEscalations(ctx context.Context, applicantID *uuid.UUID, limit int) ([]hiring.Escalation, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, applicant_id, stage, error_kind, message, provider, raw_excerpt, created_at
		FROM hiring_escalations
		WHERE ($1::uuid IS NULL OR applicant_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`, applicantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	defer rows.Close()

	var out []hiring.Escalation
	for rows.Next() {
		var (
			e     hiring.Escalation
			stage string
		)
		if err := rows.Scan(&e.ID, &e.ApplicantID, &stage, &e.ErrorKind, &e.Message, &e.Provider, &e.RawExcerpt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		e.Stage = hiring.Stage(stage)
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertTimeline appends an audit line for an applicant.
func (r *Repository) InsertTimeline(ctx context.Context, e hiring.TimelineEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hiring_applicant_timeline (applicant_id, event_type, from_status, to_status, summary)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ApplicantID, e.EventType, e.FromStatus, e.ToStatus, e.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert timeline entry: %w", err)
	}
	return nil
}

// ListTimeline returns an applicant's history, oldest first.
func (r *Repository) ListTimeline(ctx context.Context, applicantID uuid.UUID) ([]hiring.TimelineEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, applicant_id, event_type, from_status, to_status, summary, created_at
		FROM hiring_applicant_timeline
		WHERE applicant_id = $1
		ORDER BY created_at ASC`, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	defer rows.Close()

	var out []hiring.TimelineEntry
	for rows.Next() {
		var e hiring.TimelineEntry
		if err := rows.Scan(&e.ID, &e.ApplicantID, &e.EventType, &e.FromStatus, &e.ToStatus, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
