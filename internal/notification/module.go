package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hiring_pipeline_backend/internal/email"
	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/notification/outbox"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

// Outbox is the slice of the outbox repository the delivery worker needs.
type Outbox interface {
	GetByID(ctx context.Context, id uuid.UUID) (outbox.Record, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}

// Applicants loads the record a notification is about.
type Applicants interface {
	Get(ctx context.Context, id uuid.UUID) (hiring.Applicant, error)
}

// MediaLinks signs recorded clips for founder review.
type MediaLinks interface {
	VideoLinks(ctx context.Context, keys []string, ttl time.Duration) ([]string, error)
}

// Workbooks builds the applicant spreadsheet attached to the digest.
type Workbooks interface {
	Workbook(ctx context.Context) ([]byte, error)
}

// WhatsApp sends candidate nudges alongside invite emails.
type WhatsApp interface {
	Enabled() bool
	SendMessage(ctx context.Context, phoneNumber, message string) error
	SendImage(ctx context.Context, phoneNumber, caption, fileName string, image []byte) error
}

// Options configures recipients and branding.
type Options struct {
	FounderEmails  []string
	OperatorEmails []string
	CompanyName    string
	DossierLinkTTL time.Duration
	Rubric         hiring.Rubric
}

// Deps are the delivery collaborators. Media, Workbooks and WhatsApp may be nil.
type Deps struct {
	Outbox     Outbox
	Applicants Applicants
	Sender     email.Sender
	Media      MediaLinks
	Workbooks  Workbooks
	WhatsApp   WhatsApp
}

// Module delivers outbox rows once each. A failed delivery is marked failed
// with its error and is not retried.
type Module struct {
	outbox     Outbox
	applicants Applicants
	sender     email.Sender
	media      MediaLinks
	workbooks  Workbooks
	whatsapp   WhatsApp
	opts       Options
	now        func() time.Time
	log        *logger.Logger
}

func New(deps Deps, opts Options, log *logger.Logger) *Module {
	if opts.DossierLinkTTL <= 0 {
		opts.DossierLinkTTL = 7 * 24 * time.Hour
	}
	if len(opts.OperatorEmails) == 0 {
		opts.OperatorEmails = opts.FounderEmails
	}
	return &Module{
		outbox:     deps.Outbox,
		applicants: deps.Applicants,
		sender:     deps.Sender,
		media:      deps.Media,
		workbooks:  deps.Workbooks,
		whatsapp:   deps.WhatsApp,
		opts:       opts,
		now:        time.Now,
		log:        log,
	}
}

func (m *Module) Name() string { return "notification" }

// RegisterHandlers subscribes delivery to the worker's outbox events.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.NotificationOutboxDue:
		return m.Deliver(ctx, e.OutboxID)
	default:
		m.log.Warn("unhandled event type in notification module", "event", event.EventName())
		return nil
	}
}

// Deliver sends one outbox row. Only storage errors are returned; rendering
// and provider failures mark the row failed.
func (m *Module) Deliver(ctx context.Context, outboxID uuid.UUID) error {
	if m.outbox == nil {
		m.log.Debug("notification outbox not configured; skipping", "outbox_id", outboxID.String())
		return nil
	}
	rec, process, err := m.prepare(ctx, outboxID)
	if err != nil {
		m.log.Error("failed to prepare outbox record", "outbox_id", outboxID.String(), "error", err)
		return err
	}
	if !process {
		return nil
	}

	log := m.log.WithContext(ctx)
	n := rec.Notification()
	d, err := m.compose(ctx, n)
	if err == nil && len(d.msg.To) == 0 {
		log.Warn("notification has no recipients; marking succeeded", "outbox_id", rec.ID.String(), "template", string(n.Template))
		return m.outbox.MarkSucceeded(ctx, rec.ID)
	}
	if err == nil && m.sender != nil {
		err = m.sender.Send(ctx, d.msg)
	}
	if err != nil {
		if markErr := m.outbox.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			return errors.Join(err, markErr)
		}
		log.Warn("notification delivery failed",
			"outbox_id", rec.ID.String(),
			"template", string(n.Template),
			"audience", string(n.Audience),
			"error", err,
		)
		return nil
	}

	m.nudge(ctx, d.whatsApp)
	if err := m.outbox.MarkSucceeded(ctx, rec.ID); err != nil {
		return fmt.Errorf("mark outbox %s succeeded: %w", rec.ID, err)
	}
	log.Info("notification delivered", "outbox_id", rec.ID.String(), "template", string(n.Template), "recipients", len(d.msg.To))
	return nil
}

func (m *Module) prepare(ctx context.Context, id uuid.UUID) (outbox.Record, bool, error) {
	rec, err := m.outbox.GetByID(ctx, id)
	if err != nil {
		return outbox.Record{}, false, err
	}
	switch rec.Status {
	case outbox.StatusSucceeded, outbox.StatusFailed:
		m.log.Debug("outbox record already settled; skipping", "outbox_id", rec.ID.String(), "status", string(rec.Status))
		return rec, false, nil
	}
	if err := m.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return outbox.Record{}, false, err
	}
	return rec, true, nil
}

// nudge sends the WhatsApp companion message. Failures are logged only.
func (m *Module) nudge(ctx context.Context, w *whatsAppNudge) {
	if w == nil || m.whatsapp == nil || !m.whatsapp.Enabled() || w.phone == "" {
		return
	}
	var err error
	if len(w.image) > 0 {
		err = m.whatsapp.SendImage(ctx, w.phone, w.text, w.fileName, w.image)
	} else {
		err = m.whatsapp.SendMessage(ctx, w.phone, w.text)
	}
	if err != nil {
		m.log.WithContext(ctx).Warn("whatsapp nudge failed", "error", err)
	}
}

func (m *Module) recipients(audience hiring.Audience, a *hiring.Applicant) []string {
	switch audience {
	case hiring.AudienceCandidate:
		if a == nil || a.Email == "" {
			return nil
		}
		return []string{a.Email}
	case hiring.AudienceFounders:
		return m.opts.FounderEmails
	case hiring.AudienceOperators:
		return m.opts.OperatorEmails
	}
	return nil
}
