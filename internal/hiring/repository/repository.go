// Package repository persists applicants, escalations and timeline entries in
// PostgreSQL. Every status change is a compare-and-set on the current status.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hiring_pipeline_backend/internal/hiring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for applicants.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new applicant repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const applicantColumns = `id, name, email, phone, source, answers, resume_path, video_paths, video_token,
	status, app_score, video_score, interview, final_composite, decision, booking_url, interview_at,
	applied_at, video_invited_at, video_completed_at, zoom_invited_at, zoom_scheduled_at,
	decision_at, resolved_at, updated_at`

// Create inserts a new pending_ai applicant.
func (r *Repository) Create(ctx context.Context, in hiring.Intake) (hiring.Applicant, error) {
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return hiring.Applicant{}, fmt.Errorf("marshal answers: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO hiring_applicants (name, email, phone, source, answers, resume_path, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+applicantColumns,
		in.Name, in.Email, in.Phone, string(in.Source), answers, in.ResumePath, string(hiring.StatusPendingAI),
	)
	a, err := scanApplicant(row)
	if err != nil {
		return hiring.Applicant{}, fmt.Errorf("failed to create applicant: %w", err)
	}
	return a, nil
}

// Get loads one applicant.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (hiring.Applicant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicantColumns+` FROM hiring_applicants WHERE id = $1`, id)
	a, err := scanApplicant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hiring.Applicant{}, hiring.ErrNotFound
		}
		return hiring.Applicant{}, fmt.Errorf("failed to get applicant: %w", err)
	}
	return a, nil
}

// FindForBooking returns the applicant a booking email refers to. When the
// same address applied more than once, the record awaiting a booking wins,
// then any record that already reached zoom_invited, then the most recent.
// Keep in step with hiring.PreferForBooking.
func (r *Repository) FindForBooking(ctx context.Context, email string) (hiring.Applicant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+applicantColumns+`
		FROM hiring_applicants
		WHERE email = $1
		ORDER BY (status = 'zoom_invited') DESC, (zoom_invited_at IS NOT NULL) DESC, applied_at DESC
		LIMIT 1`, email)
	a, err := scanApplicant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hiring.Applicant{}, hiring.ErrNotFound
		}
		return hiring.Applicant{}, fmt.Errorf("failed to find applicant by email: %w", err)
	}
	return a, nil
}

// HasAdvancedDuplicate reports whether another applicant with the same email
// has already left pending_ai.
func (r *Repository) HasAdvancedDuplicate(ctx context.Context, email string, selfID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM hiring_applicants
			WHERE email = $1 AND status <> 'pending_ai' AND id <> $2
		)`, email, selfID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate applicant: %w", err)
	}
	return exists, nil
}

// Transition moves the applicant from `from` to patch.To and writes the patch
// in one statement. Zero affected rows means the status moved underneath us
// (hiring.ErrConflict) or the applicant does not exist (hiring.ErrNotFound).
// Score and first-reached timestamps are write-once via COALESCE.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from hiring.Status, p hiring.Patch) (hiring.Applicant, error) {
	appScore, err := marshalNullable(p.AppScore)
	if err != nil {
		return hiring.Applicant{}, err
	}
	videoScore, err := marshalNullable(p.VideoScore)
	if err != nil {
		return hiring.Applicant{}, err
	}
	interview, err := marshalNullable(p.Interview)
	if err != nil {
		return hiring.Applicant{}, err
	}
	var decision *string
	if p.Decision != nil {
		d := string(*p.Decision)
		decision = &d
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE hiring_applicants SET
			status             = $3,
			video_token        = COALESCE(video_token, $4),
			video_paths        = COALESCE($5, video_paths),
			app_score          = COALESCE(app_score, $6),
			video_score        = COALESCE(video_score, $7),
			interview          = COALESCE($8, interview),
			final_composite    = COALESCE($9, final_composite),
			decision           = COALESCE($10, decision),
			booking_url        = COALESCE($11, booking_url),
			interview_at       = COALESCE($12, interview_at),
			video_invited_at   = COALESCE(video_invited_at, $13),
			video_completed_at = COALESCE(video_completed_at, $14),
			zoom_invited_at    = COALESCE(zoom_invited_at, $15),
			zoom_scheduled_at  = COALESCE(zoom_scheduled_at, $16),
			decision_at        = COALESCE($17, decision_at),
			resolved_at        = COALESCE($18, resolved_at),
			updated_at         = now()
		WHERE id = $1 AND status = $2
		RETURNING `+applicantColumns,
		id, string(from), string(p.To),
		p.VideoToken, p.VideoPaths, appScore, videoScore, interview,
		p.FinalComposite, decision, p.BookingURL, p.InterviewAt,
		p.VideoInvitedAt, p.VideoCompletedAt, p.ZoomInvitedAt, p.ZoomScheduledAt,
		p.DecisionAt, p.ResolvedAt,
	)
	a, err := scanApplicant(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return hiring.Applicant{}, fmt.Errorf("failed to transition applicant: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hiring_applicants WHERE id = $1)`, id).Scan(&exists); err != nil {
		return hiring.Applicant{}, fmt.Errorf("failed to check applicant: %w", err)
	}
	if !exists {
		return hiring.Applicant{}, hiring.ErrNotFound
	}
	return hiring.Applicant{}, hiring.ErrConflict
}

// ListParked returns applicants sitting in one of statuses since before cutoff.
func (r *Repository) ListParked(ctx context.Context, statuses []hiring.Status, cutoff time.Time, limit int) ([]hiring.Applicant, error) {
	if limit < 1 {
		limit = 100
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+applicantColumns+`
		FROM hiring_applicants
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3`, names, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list parked applicants: %w", err)
	}
	return collectApplicants(rows)
}

// ListParams filters the admin applicant list.
type ListParams struct {
	Status *hiring.Status
	Source *hiring.Source
	Search string
	Limit  int
	Offset int
}

// List returns applicants newest first and the total matching count.
func (r *Repository) List(ctx context.Context, p ListParams) ([]hiring.Applicant, int, error) {
	if p.Limit < 1 || p.Limit > 200 {
		p.Limit = 50
	}
	var status, source *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	if p.Source != nil {
		s := string(*p.Source)
		source = &s
	}
	var search *string
	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		search = &pattern
	}

	const where = `
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR source = $2)
		  AND ($3::text IS NULL OR name ILIKE $3 OR email ILIKE $3)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hiring_applicants`+where, status, source, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applicants: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+applicantColumns+` FROM hiring_applicants`+where+`
		ORDER BY applied_at DESC
		LIMIT $4 OFFSET $5`, status, source, search, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applicants: %w", err)
	}
	items, err := collectApplicants(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// All streams every applicant, oldest first, for exports.
func (r *Repository) All(ctx context.Context) ([]hiring.Applicant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+applicantColumns+` FROM hiring_applicants ORDER BY applied_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load applicants: %w", err)
	}
	return collectApplicants(rows)
}

func collectApplicants(rows pgx.Rows) ([]hiring.Applicant, error) {
	defer rows.Close()
	var out []hiring.Applicant
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanApplicant(row pgx.Row) (hiring.Applicant, error) {
	var (
		a                               hiring.Applicant
		source, status                  string
		answers                         []byte
		appScore, videoScore, interview []byte
		decision                        *string
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone, &source, &answers, &a.ResumePath, &a.VideoPaths, &a.VideoToken,
		&status, &appScore, &videoScore, &interview, &a.FinalComposite, &decision, &a.BookingURL, &a.InterviewAt,
		&a.AppliedAt, &a.VideoInvitedAt, &a.VideoCompletedAt, &a.ZoomInvitedAt, &a.ZoomScheduledAt,
		&a.DecisionAt, &a.ResolvedAt, &a.UpdatedAt,
	)
	if err != nil {
		return hiring.Applicant{}, err
	}

	a.Source = hiring.Source(source)
	a.Status = hiring.Status(status)
	if decision != nil {
		d := hiring.Decision(*decision)
		a.Decision = &d
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return hiring.Applicant{}, fmt.Errorf("decode answers: %w", err)
	}
	if a.AppScore, err = unmarshalNullable[hiring.Score](appScore); err != nil {
		return hiring.Applicant{}, err
	}
	if a.VideoScore, err = unmarshalNullable[hiring.Score](videoScore); err != nil {
		return hiring.Applicant{}, err
	}
	if a.Interview, err = unmarshalNullable[hiring.InterviewScores](interview); err != nil {
		return hiring.Applicant{}, err
	}
	return a, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return data, nil
}

func unmarshalNullable[T any](data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return &v, nil
}
