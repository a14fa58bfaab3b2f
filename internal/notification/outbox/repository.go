// Package outbox stores notifications until the scheduler hands them to the
// delivery worker.
package outbox

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

// Status moves pending → enqueued → processing → succeeded | failed. A row
// whose enqueue fails drops back to pending.
type Status string

const (
	StatusPending    Status = "pending"
	StatusEnqueued   Status = "enqueued"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

const defaultClaimLimit = 50

var errNoPool = errors.New("outbox repository not configured")

// Payload is the JSON body of an outbox row.
type Payload struct {
	Stage hiring.Stage      `json:"stage,omitempty"`
	Vars  map[string]string `json:"vars,omitempty"`
}

type Record struct {
	ID          uuid.UUID
	ApplicantID *uuid.UUID
	Audience    hiring.Audience
	Template    hiring.Template
	Payload     Payload
	RunAt       time.Time
	Status      Status
	Attempts    int
	LastError   *string
}

// Notification rebuilds the request the row was created from.
func (r Record) Notification() hiring.Notification {
	return hiring.Notification{
		Template:    r.Template,
		Audience:    r.Audience,
		ApplicantID: r.ApplicantID,
		Stage:       r.Payload.Stage,
		Vars:        r.Payload.Vars,
	}
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ready() error {
	if r == nil || r.pool == nil {
		return errNoPool
	}
	return nil
}

const selectRecord = `SELECT id, applicant_id, audience, template, payload, run_at, status, attempts, last_error
FROM notification_outbox`

// Insert stores n as a pending row due at runAt, or now when runAt is zero.
func (r *Repository) Insert(ctx context.Context, n hiring.Notification, runAt time.Time) (uuid.UUID, error) {
	if err := r.ready(); err != nil {
		return uuid.Nil, err
	}
	if n.Template == "" || n.Audience == "" {
		return uuid.Nil, errors.New("outbox insert: template and audience are required")
	}
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}
	payload, err := json.Marshal(Payload{Stage: n.Stage, Vars: n.Vars})
	if err != nil {
		return uuid.Nil, fmt.Errorf("outbox insert: encode payload: %w", err)
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx, `
		INSERT INTO notification_outbox (applicant_id, audience, template, payload, run_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		n.ApplicantID, n.Audience, n.Template, payload, runAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("outbox insert: %w", err)
	}
	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	if err := r.ready(); err != nil {
		return Record{}, err
	}
	rows, _ := r.pool.Query(ctx, selectRecord+` WHERE id = $1`, id)
	rec, err := pgx.CollectExactlyOneRow(rows, scanRecord)
	if err != nil {
		return Record{}, fmt.Errorf("outbox %s: %w", id, err)
	}
	return rec, nil
}

// ClaimPending flips up to limit due rows from pending to enqueued in one
// statement. SKIP LOCKED keeps concurrent dispatchers off each other's rows.
func (r *Repository) ClaimPending(ctx context.Context, limit int) ([]Record, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultClaimLimit
	}
	rows, _ := r.pool.Query(ctx, `
		UPDATE notification_outbox o
		SET status = 'enqueued', updated_at = now()
		WHERE o.id IN (
			SELECT id FROM notification_outbox
			WHERE status = 'pending' AND run_at <= now()
			ORDER BY run_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING o.id, o.applicant_id, o.audience, o.template, o.payload, o.run_at, o.status, o.attempts, o.last_error`,
		limit,
	)
	recs, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("outbox claim: %w", err)
	}
	return recs, nil
}

// MarkPending returns a row to the dispatcher, recording why it came back.
func (r *Repository) MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error {
	return r.setStatus(ctx, id, StatusPending, lastError, false)
}

// MarkProcessing counts a delivery attempt.
func (r *Repository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, StatusProcessing, nil, true)
}

func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, StatusSucceeded, nil, false)
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.setStatus(ctx, id, StatusFailed, &lastError, false)
}

// setStatus overwrites last_error, so a later success clears an earlier
// failure message. Processing keeps whatever was recorded before.
func (r *Repository) setStatus(ctx context.Context, id uuid.UUID, status Status, lastError *string, attempt bool) error {
	if err := r.ready(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = $2,
		    last_error = CASE WHEN $2 = 'processing' THEN last_error ELSE $3 END,
		    attempts = attempts + CASE WHEN $4 THEN 1 ELSE 0 END,
		    updated_at = now()
		WHERE id = $1`,
		id, status, lastError, attempt,
	)
	if err != nil {
		return fmt.Errorf("outbox %s → %s: %w", id, status, err)
	}
	return nil
}

// DeleteDelivered removes succeeded rows last touched before cutoff. Failed
// rows are kept for operators to inspect.
func (r *Repository) DeleteDelivered(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notification_outbox WHERE status = 'succeeded' AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("outbox cleanup: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.CollectableRow) (Record, error) {
	var (
		rec     Record
		payload []byte
	)
	err := row.Scan(&rec.ID, &rec.ApplicantID, &rec.Audience, &rec.Template, &payload,
		&rec.RunAt, &rec.Status, &rec.Attempts, &rec.LastError)
	if err != nil {
		return Record{}, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return Record{}, fmt.Errorf("decode outbox payload: %w", err)
		}
	}
	return rec, nil
}
