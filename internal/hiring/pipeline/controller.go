package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/scoring"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options carries the links sent to candidates.
type Options struct {
	VideoAppURL string
	CalLink     string
}

// Deps are the controller's collaborators.
type Deps struct {
	Store     Store
	Scorer    Scorer
	Media     Media
	Notifier  Notifier
	Escalator Escalator
	Tokens    hiring.TokenSource
	Bus       events.Bus
}

// Controller runs the pipeline operations.
type Controller struct {
	store     Store
	guard     *Guard
	scorer    Scorer
	media     Media
	notifier  Notifier
	escalator Escalator
	tokens    hiring.TokenSource
	bus       events.Bus
	opts      Options
	log       *logger.Logger
	now       func() time.Time
}

// New creates a Controller.
func New(deps Deps, opts Options, log *logger.Logger) *Controller {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = hiring.RandomTokens{}
	}
	return &Controller{
		store:     deps.Store,
		guard:     NewGuard(deps.Store),
		scorer:    deps.Scorer,
		media:     deps.Media,
		notifier:  deps.Notifier,
		escalator: deps.Escalator,
		tokens:    tokens,
		bus:       deps.Bus,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the time source.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Submit validates an application, stores it as pending_ai and queues
// scoring. A queueing failure is escalated but does not fail the submission;
// the applicant stays parked until redriven.
func (c *Controller) Submit(ctx context.Context, in hiring.Intake) (hiring.Applicant, error) {
	in, err := hiring.NormalizeIntake(in)
	if err != nil {
		return hiring.Applicant{}, err
	}
	a, err := c.store.Create(ctx, in)
	if err != nil {
		return hiring.Applicant{}, err
	}
	c.log.WithContext(ctx).Info("application received", "applicant_id", a.ID.String(), "source", string(a.Source))

	if err := c.bus.PublishSync(ctx, events.ApplicationSubmitted{BaseEvent: events.NewBaseEvent(), ApplicantID: a.ID}); err != nil {
		c.escalator.Report(ctx, &a.ID, hiring.StageApplication, fmt.Errorf("queue application scoring: %w", err))
	}
	return a, nil
}

// ProcessApplication scores a pending_ai applicant and invites or rejects
// them. Scoring failures leave the applicant parked and are escalated once.
// Only storage errors are returned so the queue can retry them.
func (c *Controller) ProcessApplication(ctx context.Context, id uuid.UUID) error {
	a, ok, err := c.load(ctx, id, hiring.StatusPendingAI)
	if err != nil || !ok {
		return err
	}
	log := c.log.WithContext(ctx).WithApplicant(id.String())

	dup, err := c.guard.IsDuplicate(ctx, a.Email, a.ID)
	if err != nil {
		return err
	}
	if dup {
		// Duplicates are silent to founders; the candidate still gets the
		// neutral application rejection.
		now := c.now().UTC()
		reject := hiring.DecisionReject
		updated, ok, err := c.transition(ctx, a, hiring.Patch{
			To:         hiring.StatusRejected,
			Decision:   &reject,
			DecisionAt: &now,
		}, "duplicate application")
		if err != nil || !ok {
			return err
		}
		c.notify(ctx, updated.ID, hiring.TemplateRejection, hiring.AudienceCandidate, hiring.StageApplication, nil)
		return nil
	}

	input := scoring.ApplicationInput{ApplicantID: a.ID, Name: a.Name, Answers: a.Answers}
	if a.ResumePath != nil && *a.ResumePath != "" && c.media != nil {
		resume, err := c.media.FetchResume(ctx, *a.ResumePath)
		if err != nil {
			log.Warn("resume download failed, scoring without it", "error", err)
		} else {
			input.Resume = resume
		}
	}

	score, err := c.scorer.ScoreApplication(ctx, input)
	if err != nil {
		c.escalator.Report(ctx, &a.ID, hiring.StageApplication, err)
		return nil
	}

	now := c.now().UTC()
	if !score.Pass {
		reject := hiring.DecisionReject
		updated, ok, err := c.transition(ctx, a, hiring.Patch{
			To:         hiring.StatusRejected,
			AppScore:   &score,
			Decision:   &reject,
			DecisionAt: &now,
		}, fmt.Sprintf("application scored %d", score.Composite))
		if err != nil || !ok {
			return err
		}
		c.notify(ctx, updated.ID, hiring.TemplateRejection, hiring.AudienceCandidate, hiring.StageApplication, nil)
		c.notify(ctx, updated.ID, hiring.TemplateStageUpdate, hiring.AudienceFounders, hiring.StageApplication,
			map[string]string{hiring.VarOutcome: hiring.OutcomeRejected})
		return nil
	}

	token, err := c.tokens.NewToken()
	if err != nil {
		return err
	}
	updated, ok, err := c.transition(ctx, a, hiring.Patch{
		To:             hiring.StatusVideoInvited,
		VideoToken:     &token,
		AppScore:       &score,
		VideoInvitedAt: &now,
	}, fmt.Sprintf("application scored %d", score.Composite))
	if err != nil || !ok {
		return err
	}

	link, err := c.videoLink(updated)
	if err != nil {
		c.escalator.Report(ctx, &updated.ID, hiring.StageApplication, err)
	} else {
		c.notify(ctx, updated.ID, hiring.TemplateVideoInvite, hiring.AudienceCandidate, hiring.StageApplication,
			map[string]string{hiring.VarLink: link})
	}
	c.notify(ctx, updated.ID, hiring.TemplateStageUpdate, hiring.AudienceFounders, hiring.StageApplication,
		map[string]string{hiring.VarOutcome: hiring.OutcomePassed})
	return nil
}

// CompleteVideo records the uploaded clip paths and queues video scoring. A
// repeated completion with the right token after the applicant moved on
// returns the current record.
func (c *Controller) CompleteVideo(ctx context.Context, in hiring.VideoCompletion) (hiring.Applicant, error) {
	if err := hiring.ValidateVideoPaths(in.VideoPaths); err != nil {
		return hiring.Applicant{}, err
	}
	a, err := c.store.Get(ctx, in.ApplicantID)
	if err != nil {
		return hiring.Applicant{}, err
	}
	if !hiring.TokenMatches(a.VideoToken, in.Token) {
		return hiring.Applicant{}, hiring.ErrTokenMismatch
	}
	if hiring.PastStage(a.Status, hiring.StatusVideoInvited) {
		return a, nil
	}
	if a.Status != hiring.StatusVideoInvited {
		return hiring.Applicant{}, hiring.ErrConflict
	}

	now := c.now().UTC()
	updated, ok, err := c.transition(ctx, a, hiring.Patch{
		To:               hiring.StatusVideoScoring,
		VideoPaths:       in.VideoPaths,
		VideoCompletedAt: &now,
	}, "video answers uploaded")
	if err != nil {
		return hiring.Applicant{}, err
	}
	if !ok {
		return c.store.Get(ctx, a.ID)
	}

	if err := c.bus.PublishSync(ctx, events.VideoCompleted{BaseEvent: events.NewBaseEvent(), ApplicantID: updated.ID}); err != nil {
		c.escalator.Report(ctx, &updated.ID, hiring.StageVideo, fmt.Errorf("queue video scoring: %w", err))
	}
	return updated, nil
}

// ProcessVideo downloads and scores the five clips, then invites the
// applicant to book an interview or rejects them.
func (c *Controller) ProcessVideo(ctx context.Context, id uuid.UUID) error {
	a, ok, err := c.load(ctx, id, hiring.StatusVideoScoring)
	if err != nil || !ok {
		return err
	}
	if a.VideoScore != nil {
		return nil
	}

	clips, err := c.downloadClips(ctx, a.VideoPaths)
	if errors.Is(err, hiring.ErrValidation) {
		// Unusable media is final: no retry can fix it, so the candidate gets
		// the neutral video rejection and operators are not paged.
		return c.rejectUnusableVideo(ctx, a, err)
	}
	if err != nil {
		c.escalator.Report(ctx, &a.ID, hiring.StageVideo, err)
		return nil
	}

	score, err := c.scorer.ScoreVideo(ctx, scoring.VideoInput{ApplicantID: a.ID, Name: a.Name, Clips: clips})
	if err != nil {
		c.escalator.Report(ctx, &a.ID, hiring.StageVideo, err)
		return nil
	}

	now := c.now().UTC()
	if !score.Pass {
		reject := hiring.DecisionReject
		updated, ok, err := c.transition(ctx, a, hiring.Patch{
			To:         hiring.StatusRejected,
			VideoScore: &score,
			Decision:   &reject,
			DecisionAt: &now,
		}, fmt.Sprintf("video scored %d", score.Composite))
		if err != nil || !ok {
			return err
		}
		c.notify(ctx, updated.ID, hiring.TemplateRejection, hiring.AudienceCandidate, hiring.StageVideo, nil)
		c.notify(ctx, updated.ID, hiring.TemplateStageUpdate, hiring.AudienceFounders, hiring.StageVideo,
			map[string]string{hiring.VarOutcome: hiring.OutcomeRejected})
		return nil
	}

	updated, ok, err := c.transition(ctx, a, hiring.Patch{
		To:            hiring.StatusZoomInvited,
		VideoScore:    &score,
		ZoomInvitedAt: &now,
	}, fmt.Sprintf("video scored %d", score.Composite))
	if err != nil || !ok {
		return err
	}
	c.notify(ctx, updated.ID, hiring.TemplateZoomInvite, hiring.AudienceCandidate, hiring.StageVideo,
		map[string]string{hiring.VarLink: c.opts.CalLink})
	c.notify(ctx, updated.ID, hiring.TemplateStageUpdate, hiring.AudienceFounders, hiring.StageVideo,
		map[string]string{hiring.VarOutcome: hiring.OutcomePassed})
	return nil
}

func (c *Controller) rejectUnusableVideo(ctx context.Context, a hiring.Applicant, cause error) error {
	now := c.now().UTC()
	reject := hiring.DecisionReject
	updated, ok, err := c.transition(ctx, a, hiring.Patch{
		To:         hiring.StatusRejected,
		Decision:   &reject,
		DecisionAt: &now,
	}, fmt.Sprintf("unusable video: %v", cause))
	if err != nil || !ok {
		return err
	}
	c.notify(ctx, updated.ID, hiring.TemplateRejection, hiring.AudienceCandidate, hiring.StageVideo, nil)
	return nil
}

func (c *Controller) downloadClips(ctx context.Context, paths []string) ([]scoring.Clip, error) {
	if err := hiring.ValidateVideoPaths(paths); err != nil {
		return nil, err
	}
	if c.media == nil {
		return nil, errors.New("media storage is not configured")
	}
	clips := make([]scoring.Clip, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			clip, err := c.media.FetchClip(gctx, path)
			if err != nil {
				return fmt.Errorf("download clip %d: %w", i+1, err)
			}
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}

// BookingResult reports what ConfirmBooking did.
type BookingResult struct {
	Applicant        hiring.Applicant
	AlreadyScheduled bool
}

// ConfirmBooking marks the zoom_invited applicant with the booking's email as
// scheduled and sends the founder dossier. Replays for an applicant that is
// already past zoom_invited report AlreadyScheduled; anything else is
// hiring.ErrNotFound.
func (c *Controller) ConfirmBooking(ctx context.Context, b hiring.Booking) (BookingResult, error) {
	email := hiring.NormalizeEmail(b.Email)
	if email == "" {
		return BookingResult{}, hiring.Invalid("email", "is required")
	}
	a, err := c.store.FindForBooking(ctx, email)
	if err != nil {
		return BookingResult{}, err
	}

	// One re-read covers a concurrent delivery of the same booking.
	for attempt := 0; attempt < 2; attempt++ {
		if a.Status != hiring.StatusZoomInvited {
			if a.ZoomInvitedAt != nil && hiring.PastStage(a.Status, hiring.StatusZoomInvited) {
				return BookingResult{Applicant: a, AlreadyScheduled: true}, nil
			}
			return BookingResult{}, hiring.ErrNotFound
		}

		now := c.now().UTC()
		patch := hiring.Patch{
			To:              hiring.StatusZoomScheduled,
			ZoomScheduledAt: &now,
			InterviewAt:     b.StartTime,
		}
		if b.MeetingURL != "" {
			patch.BookingURL = &b.MeetingURL
		}
		updated, ok, err := c.transition(ctx, a, patch, "interview booked")
		if err != nil {
			return BookingResult{}, err
		}
		if ok {
			c.notify(ctx, updated.ID, hiring.TemplateFounderDossier, hiring.AudienceFounders, hiring.StageBooking,
				map[string]string{hiring.VarStart: bookingStart(b)})
			return BookingResult{Applicant: updated}, nil
		}
		if a, err = c.store.Get(ctx, a.ID); err != nil {
			return BookingResult{}, err
		}
	}
	return BookingResult{}, hiring.ErrConflict
}

func bookingStart(b hiring.Booking) string {
	if b.StartTime != nil {
		return b.StartTime.UTC().Format(time.RFC3339)
	}
	if b.StartRaw != "" {
		return b.StartRaw
	}
	return "TBD"
}

// RecordInterview stores the interviewer's ratings and queues the final
// decision.
func (c *Controller) RecordInterview(ctx context.Context, in hiring.InterviewSubmission) (hiring.Applicant, error) {
	scores, err := hiring.ValidateInterview(in.Scores)
	if err != nil {
		return hiring.Applicant{}, err
	}
	a, err := c.store.Get(ctx, in.ApplicantID)
	if err != nil {
		return hiring.Applicant{}, err
	}
	if a.Status != hiring.StatusZoomScheduled {
		return hiring.Applicant{}, hiring.ErrConflict
	}

	updated, ok, err := c.transition(ctx, a, hiring.Patch{
		To:        hiring.StatusPendingDecision,
		Interview: &scores,
	}, "interview scored")
	if err != nil {
		return hiring.Applicant{}, err
	}
	if !ok {
		return hiring.Applicant{}, hiring.ErrConflict
	}

	if err := c.bus.PublishSync(ctx, events.InterviewRecorded{BaseEvent: events.NewBaseEvent(), ApplicantID: updated.ID}); err != nil {
		c.escalator.Report(ctx, &updated.ID, hiring.StageFinal, fmt.Errorf("queue final decision: %w", err))
	}
	return updated, nil
}

// FinalizeDecision runs the decision engine for a pending_decision applicant
// and notifies the candidate and founders.
func (c *Controller) FinalizeDecision(ctx context.Context, id uuid.UUID) error {
	a, ok, err := c.load(ctx, id, hiring.StatusPendingDecision)
	if err != nil || !ok {
		return err
	}
	if a.Interview == nil {
		c.escalator.Report(ctx, &a.ID, hiring.StageFinal, errors.New("pending_decision without interview scores"))
		return nil
	}

	res := hiring.Decide(hiring.DecisionInput{
		AppComposite:   composite(a.AppScore),
		VideoComposite: composite(a.VideoScore),
		Interview:      *a.Interview,
	})
	now := c.now().UTC()
	updated, ok, err := c.transition(ctx, a, hiring.Patch{
		To:             hiring.StatusFor(res.Decision),
		FinalComposite: &res.FinalComposite,
		Decision:       &res.Decision,
		DecisionAt:     &now,
	}, fmt.Sprintf("final composite %d", res.FinalComposite))
	if err != nil || !ok {
		return err
	}

	switch res.Decision {
	case hiring.DecisionHire:
		c.notify(ctx, updated.ID, hiring.TemplateOffer, hiring.AudienceCandidate, hiring.StageFinal, nil)
	case hiring.DecisionReject:
		c.notify(ctx, updated.ID, hiring.TemplateRejection, hiring.AudienceCandidate, hiring.StageFinal, nil)
	case hiring.DecisionReview:
		c.notify(ctx, updated.ID, hiring.TemplateFounderReview, hiring.AudienceFounders, hiring.StageFinal, nil)
	}
	c.notify(ctx, updated.ID, hiring.TemplateDecisionSummary, hiring.AudienceFounders, hiring.StageFinal, map[string]string{
		hiring.VarFinal:       strconv.Itoa(res.FinalComposite),
		hiring.VarDecision:    string(res.Decision),
		hiring.VarAppPoints:   res.AppPoints(),
		hiring.VarVideoPoints: res.VideoPoints(),
		hiring.VarZoomPoints:  res.ZoomPoints(),
		hiring.VarZoomAverage: res.ZoomAverage(),
		hiring.VarGutOverride: strconv.FormatBool(res.GutOverride),
	})
	return nil
}

func composite(s *hiring.Score) *int {
	if s == nil {
		return nil
	}
	v := s.Composite
	return &v
}

// ResolveReview applies a founder's hire or reject to a review_needed applicant.
func (c *Controller) ResolveReview(ctx context.Context, in hiring.Resolution) (hiring.Applicant, error) {
	if in.Decision != hiring.DecisionHire && in.Decision != hiring.DecisionReject {
		return hiring.Applicant{}, hiring.Invalid("decision", "must be hire or reject")
	}
	a, err := c.store.Get(ctx, in.ApplicantID)
	if err != nil {
		return hiring.Applicant{}, err
	}
	if a.Status != hiring.StatusReviewNeeded {
		return hiring.Applicant{}, hiring.ErrConflict
	}

	now := c.now().UTC()
	decision := in.Decision
	updated, ok, err := c.transition(ctx, a, hiring.Patch{
		To:         hiring.StatusFor(decision),
		Decision:   &decision,
		DecisionAt: &now,
		ResolvedAt: &now,
	}, "resolved by founder")
	if err != nil {
		return hiring.Applicant{}, err
	}
	if !ok {
		return hiring.Applicant{}, hiring.ErrConflict
	}
	if in.ResolvedBy != nil {
		c.log.WithContext(ctx).Info("review resolved", "applicant_id", a.ID.String(), "resolved_by", in.ResolvedBy.String(), "decision", string(decision))
	}

	if decision == hiring.DecisionHire {
		c.notify(ctx, updated.ID, hiring.TemplateOffer, hiring.AudienceCandidate, hiring.StageFinal, nil)
	} else {
		c.notify(ctx, updated.ID, hiring.TemplateRejection, hiring.AudienceCandidate, hiring.StageFinal, nil)
	}
	return updated, nil
}

// Redrive re-queues the processing task for an applicant parked at an
// automated stage.
func (c *Controller) Redrive(ctx context.Context, id uuid.UUID) error {
	a, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	var event events.Event
	switch {
	case a.Status == hiring.StatusPendingAI:
		event = events.ApplicationSubmitted{BaseEvent: events.NewBaseEvent(), ApplicantID: a.ID}
	case a.Status == hiring.StatusVideoScoring && a.VideoScore == nil:
		event = events.VideoCompleted{BaseEvent: events.NewBaseEvent(), ApplicantID: a.ID}
	case a.Status == hiring.StatusPendingDecision:
		event = events.InterviewRecorded{BaseEvent: events.NewBaseEvent(), ApplicantID: a.ID}
	default:
		return hiring.ErrConflict
	}
	if err := c.bus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("redrive %s: %w", a.ID, err)
	}
	c.log.WithContext(ctx).Info("applicant redriven", "applicant_id", a.ID.String(), "status", string(a.Status))
	return nil
}

// ParkedStatuses are the statuses an automated task can leave an applicant in.
var ParkedStatuses = []hiring.Status{hiring.StatusPendingAI, hiring.StatusVideoScoring, hiring.StatusPendingDecision}

// RedriveParked re-queues every parked applicant untouched for olderThan and
// returns how many were queued.
func (c *Controller) RedriveParked(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := c.now().UTC().Add(-olderThan)
	parked, err := c.store.ListParked(ctx, ParkedStatuses, cutoff, limit)
	if err != nil {
		return 0, err
	}
	count := 0
	var errs []error
	for _, a := range parked {
		if err := c.Redrive(ctx, a.ID); err != nil {
			if errors.Is(err, hiring.ErrConflict) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		count++
	}
	return count, errors.Join(errs...)
}

// load fetches an applicant and reports whether it is at the expected status.
// A missing applicant is logged and skipped so the queue does not retry it.
func (c *Controller) load(ctx context.Context, id uuid.UUID, want hiring.Status) (hiring.Applicant, bool, error) {
	a, err := c.store.Get(ctx, id)
	if errors.Is(err, hiring.ErrNotFound) {
		c.log.WithContext(ctx).Warn("task for unknown applicant", "applicant_id", id.String())
		return hiring.Applicant{}, false, nil
	}
	if err != nil {
		return hiring.Applicant{}, false, err
	}
	if a.Status != want {
		c.log.WithContext(ctx).Debug("applicant not at stage, skipping",
			"applicant_id", id.String(), "status", string(a.Status), "want", string(want))
		return a, false, nil
	}
	return a, true, nil
}

// transition performs the compare-and-set. ok is false when another
// invocation moved the applicant first.
func (c *Controller) transition(ctx context.Context, a hiring.Applicant, p hiring.Patch, summary string) (hiring.Applicant, bool, error) {
	if !hiring.CanTransition(a.Status, p.To) {
		return a, false, fmt.Errorf("%w: %s to %s", hiring.ErrInvalidTransition, a.Status, p.To)
	}
	updated, err := c.store.Transition(ctx, a.ID, a.Status, p)
	if errors.Is(err, hiring.ErrConflict) {
		c.log.WithContext(ctx).Debug("transition lost race",
			"applicant_id", a.ID.String(), "from", string(a.Status), "to", string(p.To))
		return a, false, nil
	}
	if err != nil {
		return a, false, err
	}

	c.log.WithContext(ctx).Transition(a.ID.String(), string(a.Status), string(p.To))
	c.bus.Publish(ctx, events.ApplicantTransitioned{
		BaseEvent:   events.NewBaseEvent(),
		ApplicantID: a.ID,
		From:        string(a.Status),
		To:          string(p.To),
		Summary:     summary,
	})
	return updated, true, nil
}

func (c *Controller) notify(ctx context.Context, id uuid.UUID, tmpl hiring.Template, audience hiring.Audience, stage hiring.Stage, vars map[string]string) {
	c.notifier.Notify(ctx, hiring.Notification{
		Template:    tmpl,
		Audience:    audience,
		ApplicantID: &id,
		Stage:       stage,
		Vars:        vars,
	})
}

func (c *Controller) videoLink(a hiring.Applicant) (string, error) {
	if a.VideoToken == nil {
		return "", errors.New("video token missing after invite")
	}
	u, err := url.Parse(c.opts.VideoAppURL)
	if err != nil {
		return "", fmt.Errorf("parse video app url: %w", err)
	}
	q := u.Query()
	q.Set("id", a.ID.String())
	q.Set("token", *a.VideoToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
