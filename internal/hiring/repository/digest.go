package repository

import (
	"context"
	"fmt"
	"time"

	"hiring_pipeline_backend/internal/hiring"
)

// Digest aggregates status counts and the activity since now minus the
// digest window.
func (r *Repository) Digest(ctx context.Context, now time.Time) (hiring.Digest, error) {
	d := hiring.NewDigest(now)

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM hiring_applicants GROUP BY status`)
	if err != nil {
		return hiring.Digest{}, fmt.Errorf("failed to count statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return hiring.Digest{}, fmt.Errorf("failed to scan status count: %w", err)
		}
		d.ByStatus[hiring.Status(status)] = count
		d.Total += count
	}
	if err := rows.Err(); err != nil {
		return hiring.Digest{}, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE applied_at >= $1),
			COUNT(*) FILTER (WHERE status = 'hired' AND decision_at >= $1),
			COUNT(*) FILTER (WHERE status = 'rejected' AND decision_at >= $1)
		FROM hiring_applicants`, d.Since,
	).Scan(&d.NewApplications, &d.HiredInWindow, &d.RejectedInWindow)
	if err != nil {
		return hiring.Digest{}, fmt.Errorf("failed to count weekly activity: %w", err)
	}
	return d, nil
}
