// Package exports builds the weekly pipeline digest and the applicant
// spreadsheet that travels with it.
package exports

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/logger"
)

// Digest vars keys. Per-status counts use statusVarPrefix + status.
const (
	varSince        = "since"
	varGeneratedAt  = "generated_at"
	varNew          = "new_applications"
	varHired        = "hired"
	varRejected     = "rejected"
	varTotal        = "total"
	statusVarPrefix = "status."
)

// Source reads the aggregates and rows the digest is built from.
type Source interface {
	Digest(ctx context.Context, now time.Time) (hiring.Digest, error)
	All(ctx context.Context) ([]hiring.Applicant, error)
}

// Notifier queues a notification.
type Notifier interface {
	Notify(ctx context.Context, n hiring.Notification)
}

// Service computes the digest on demand and queues the weekly email.
type Service struct {
	source   Source
	notifier Notifier
	now      func() time.Time
	log      *logger.Logger
}

func NewService(source Source, notifier Notifier, log *logger.Logger) *Service {
	return &Service{source: source, notifier: notifier, now: time.Now, log: log}
}

// Build returns the digest for the window ending now.
func (s *Service) Build(ctx context.Context) (hiring.Digest, error) {
	d, err := s.source.Digest(ctx, s.now().UTC())
	if err != nil {
		return hiring.Digest{}, fmt.Errorf("build digest: %w", err)
	}
	return d, nil
}

// Workbook renders every applicant as an .xlsx export.
func (s *Service) Workbook(ctx context.Context) ([]byte, error) {
	applicants, err := s.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load applicants: %w", err)
	}
	return ApplicantsWorkbook(applicants)
}

// SendWeeklyDigest queues the founders' weekly_digest email. The spreadsheet
// is attached at delivery so it reflects the latest rows.
func (s *Service) SendWeeklyDigest(ctx context.Context) error {
	d, err := s.Build(ctx)
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, hiring.Notification{
		Template: hiring.TemplateWeeklyDigest,
		Audience: hiring.AudienceFounders,
		Vars:     DigestVars(d),
	})
	s.log.WithContext(ctx).Info("weekly digest queued", "total", d.Total, "new", d.NewApplications)
	return nil
}

// DigestVars flattens a digest into notification vars.
func DigestVars(d hiring.Digest) map[string]string {
	vars := map[string]string{
		varSince:       d.Since.UTC().Format(time.RFC3339),
		varGeneratedAt: d.GeneratedAt.UTC().Format(time.RFC3339),
		varNew:         strconv.Itoa(d.NewApplications),
		varHired:       strconv.Itoa(d.HiredInWindow),
		varRejected:    strconv.Itoa(d.RejectedInWindow),
		varTotal:       strconv.Itoa(d.Total),
	}
	for status, n := range d.ByStatus {
		vars[statusVarPrefix+string(status)] = strconv.Itoa(n)
	}
	return vars
}

// DigestFromVars is the inverse of DigestVars. Unknown statuses are ignored.
func DigestFromVars(vars map[string]string) (hiring.Digest, error) {
	generated, err := time.Parse(time.RFC3339, vars[varGeneratedAt])
	if err != nil {
		return hiring.Digest{}, fmt.Errorf("digest generated_at: %w", err)
	}
	d := hiring.NewDigest(generated)
	if since, err := time.Parse(time.RFC3339, vars[varSince]); err == nil {
		d.Since = since
	}

	ints := map[string]*int{
		varNew:      &d.NewApplications,
		varHired:    &d.HiredInWindow,
		varRejected: &d.RejectedInWindow,
		varTotal:    &d.Total,
	}
	for key, dst := range ints {
		if *dst, err = atoi(vars, key); err != nil {
			return hiring.Digest{}, err
		}
	}
	for key := range vars {
		status, ok := strings.CutPrefix(key, statusVarPrefix)
		if !ok || !hiring.Status(status).Valid() {
			continue
		}
		if d.ByStatus[hiring.Status(status)], err = atoi(vars, key); err != nil {
			return hiring.Digest{}, err
		}
	}
	return d, nil
}

func atoi(vars map[string]string, key string) (int, error) {
	raw, ok := vars[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("digest %s: %w", key, err)
	}
	return n, nil
}
