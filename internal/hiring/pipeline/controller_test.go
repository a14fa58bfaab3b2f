package pipeline

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
)

func TestSubmitStoresPendingAndQueuesScoring(t *testing.T) {
	h := newHarness()
	a, err := h.ctrl.Submit(context.Background(), hiring.Intake{
		Name:    "  Jordan <b>Rivera</b> ",
		Email:   " Jordan@Example.com ",
		Source:  hiring.SourceReferral,
		Answers: validAnswers(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a.Status != hiring.StatusPendingAI {
		t.Fatalf("expected pending_ai, got %s", a.Status)
	}
	if a.Email != "jordan@example.com" || a.Name != "Jordan Rivera" {
		t.Fatalf("expected normalized intake, got %q %q", a.Name, a.Email)
	}
	if got := h.queue.count(events.ApplicationSubmitted{}.EventName()); got != 1 {
		t.Fatalf("expected one queued scoring task, got %d", got)
	}
}

func TestSubmitRejectsInvalidIntakeWithoutStoring(t *testing.T) {
	h := newHarness()
	answers := validAnswers()
	answers[3] = "   "
	_, err := h.ctrl.Submit(context.Background(), hiring.Intake{
		Name: "Jordan", Email: "jordan@example.com", Source: hiring.SourceDirect, Answers: answers,
	})
	var verr *hiring.ValidationError
	if !errors.As(err, &verr) || verr.Field != "answers[3]" {
		t.Fatalf("expected validation error on answers[3], got %v", err)
	}
	if len(h.store.applicants) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(h.store.applicants))
	}
}

func TestSubmitQueueFailureEscalatesButSucceeds(t *testing.T) {
	h := newHarness()
	h.queue.fail = errBoom
	a, err := h.ctrl.Submit(context.Background(), hiring.Intake{
		Name: "Jordan", Email: "jordan@example.com", Source: hiring.SourceDirect, Answers: validAnswers(),
	})
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if len(h.escalator.calls) != 1 || *h.escalator.calls[0].applicantID != a.ID {
		t.Fatalf("expected one escalation for the applicant, got %+v", h.escalator.calls)
	}
}

func TestDuplicateApplicantIsRejectedWithoutScoring(t *testing.T) {
	h := newHarness()
	prior := pendingApplicant("dup@example.com")
	prior.Status = hiring.StatusVideoInvited
	h.store.put(prior)
	a := h.store.put(pendingApplicant("dup@example.com"))

	if err := h.ctrl.ProcessApplication(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	if got.Decision == nil || *got.Decision != hiring.DecisionReject || got.DecisionAt == nil {
		t.Fatalf("expected reject decision with timestamp, got %+v", got.Decision)
	}
	if h.scorer.appCalls != 0 {
		t.Fatalf("expected zero provider calls, got %d", h.scorer.appCalls)
	}
	if len(h.notifier.sent) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(h.notifier.sent))
	}
	n := h.notifier.sent[0]
	if n.Template != hiring.TemplateRejection || n.Audience != hiring.AudienceCandidate || n.Stage != hiring.StageApplication {
		t.Fatalf("expected neutral application rejection to the candidate, got %+v", n)
	}
	if n.ApplicantID == nil || *n.ApplicantID != a.ID {
		t.Fatalf("expected rejection addressed to the duplicate row, got %v", n.ApplicantID)
	}
}

func TestPendingDuplicateDoesNotBlockScoring(t *testing.T) {
	h := newHarness()
	h.store.put(pendingApplicant("twice@example.com"))
	a := h.store.put(pendingApplicant("twice@example.com"))
	h.scorer.app = passingScore(hiring.StageApplication, 82)

	if err := h.ctrl.ProcessApplication(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.scorer.appCalls != 1 {
		t.Fatalf("expected one provider call, got %d", h.scorer.appCalls)
	}
}

func TestScoringFailureLeavesStatusAndEscalatesOnce(t *testing.T) {
	h := newHarness()
	a := h.store.put(pendingApplicant("fail@example.com"))
	h.scorer.appErr = &hiring.ScoringError{Stage: hiring.StageApplication, Provider: "gemini", Raw: "not json", Err: errBoom}

	if err := h.ctrl.ProcessApplication(context.Background(), a.ID); err != nil {
		t.Fatalf("expected scoring failure to be absorbed, got %v", err)
	}

	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusPendingAI {
		t.Fatalf("expected pending_ai, got %s", got.Status)
	}
	if got.AppScore != nil {
		t.Fatalf("expected no score written, got %+v", got.AppScore)
	}
	if len(h.escalator.calls) != 1 {
		t.Fatalf("expected exactly one escalation, got %d", len(h.escalator.calls))
	}
	if !errors.Is(h.escalator.calls[0].err, hiring.ErrScoring) || h.escalator.calls[0].stage != hiring.StageApplication {
		t.Fatalf("expected application scoring escalation, got %+v", h.escalator.calls[0])
	}
	if len(h.notifier.sent) != 0 {
		t.Fatalf("expected no notifications, got %d", len(h.notifier.sent))
	}
}

func TestStrongApplicationIsInvitedToVideo(t *testing.T) {
	h := newHarness()
	a := h.store.put(pendingApplicant("strong@example.com"))
	h.scorer.app = passingScore(hiring.StageApplication, 82)

	if err := h.ctrl.ProcessApplication(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusVideoInvited {
		t.Fatalf("expected video_invited, got %s", got.Status)
	}
	if got.VideoToken == nil || *got.VideoToken != "tok-123" {
		t.Fatalf("expected token to be stored, got %v", got.VideoToken)
	}
	if got.AppScore == nil || got.AppScore.Composite != 82 || got.VideoInvitedAt == nil {
		t.Fatalf("expected app score and invite time, got %+v", got)
	}
	if n := h.notifier.count(hiring.TemplateVideoInvite); n != 1 {
		t.Fatalf("expected one video_invite, got %d", n)
	}
	if n := h.notifier.count(hiring.TemplateRejection); n != 0 {
		t.Fatalf("expected no rejection, got %d", n)
	}

	invite, _ := h.notifier.find(hiring.TemplateVideoInvite)
	link, err := url.Parse(invite.Vars[hiring.VarLink])
	if err != nil {
		t.Fatalf("expected a valid link, got %v", err)
	}
	if link.Query().Get("id") != a.ID.String() || link.Query().Get("token") != "tok-123" {
		t.Fatalf("expected id and token in link, got %s", link)
	}
	update, ok := h.notifier.find(hiring.TemplateStageUpdate)
	if !ok || update.Audience != hiring.AudienceFounders || update.Vars[hiring.VarOutcome] != hiring.OutcomePassed {
		t.Fatalf("expected founders stage_update passed, got %+v", update)
	}
}

func TestWeakApplicationIsRejected(t *testing.T) {
	h := newHarness()
	a := h.store.put(pendingApplicant("weak@example.com"))
	h.scorer.app = failingScore(hiring.StageApplication, 27)

	if err := h.ctrl.ProcessApplication(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	if got.VideoToken != nil {
		t.Fatalf("expected no token, got %q", *got.VideoToken)
	}
	rejection, ok := h.notifier.find(hiring.TemplateRejection)
	if !ok || rejection.Stage != hiring.StageApplication || rejection.Audience != hiring.AudienceCandidate {
		t.Fatalf("expected candidate rejection at application stage, got %+v", rejection)
	}
	if n := h.notifier.count(hiring.TemplateRejection); n != 1 {
		t.Fatalf("expected one rejection, got %d", n)
	}
	if n := h.notifier.count(hiring.TemplateVideoInvite); n != 0 {
		t.Fatalf("expected no video_invite, got %d", n)
	}
}

func TestCandidateNotificationsCarryNoScores(t *testing.T) {
	h := newHarness()
	a := h.store.put(pendingApplicant("vars@example.com"))
	h.scorer.app = passingScore(hiring.StageApplication, 82)
	_ = h.ctrl.ProcessApplication(context.Background(), a.ID)

	for _, n := range h.notifier.sent {
		if n.Audience != hiring.AudienceCandidate {
			continue
		}
		for key := range n.Vars {
			if key != hiring.VarLink {
				t.Fatalf("expected only link vars for candidates, got %s", key)
			}
		}
	}
}

func TestResumeDownloadFailureStillScores(t *testing.T) {
	h := newHarness()
	p := pendingApplicant("resume@example.com")
	path := "resumes/r.pdf"
	p.ResumePath = &path
	a := h.store.put(p)
	h.media.resumeErr = errBoom
	h.scorer.app = passingScore(hiring.StageApplication, 80)

	if err := h.ctrl.ProcessApplication(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.scorer.appCalls != 1 || h.scorer.lastInput.Resume != nil {
		t.Fatalf("expected scoring without resume, got calls=%d resume=%d", h.scorer.appCalls, len(h.scorer.lastInput.Resume))
	}
}

func TestProcessApplicationSkipsAdvancedApplicant(t *testing.T) {
	h := newHarness()
	p := pendingApplicant("done@example.com")
	p.Status = hiring.StatusVideoInvited
	a := h.store.put(p)

	if err := h.ctrl.ProcessApplication(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.scorer.appCalls != 0 {
		t.Fatalf("expected replayed task to skip scoring, got %d calls", h.scorer.appCalls)
	}
}

func videoInvited(h *harness, email string) hiring.Applicant {
	p := pendingApplicant(email)
	p.Status = hiring.StatusVideoInvited
	token := "tok-123"
	p.VideoToken = &token
	return h.store.put(p)
}

func TestCompleteVideoRequiresMatchingToken(t *testing.T) {
	h := newHarness()
	a := videoInvited(h, "video@example.com")

	_, err := h.ctrl.CompleteVideo(context.Background(), hiring.VideoCompletion{ApplicantID: a.ID, Token: "wrong", VideoPaths: clipPaths()})
	if !errors.Is(err, hiring.ErrTokenMismatch) {
		t.Fatalf("expected token mismatch, got %v", err)
	}
	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusVideoInvited {
		t.Fatalf("expected unchanged status, got %s", got.Status)
	}
}

func TestCompleteVideoIsIdempotent(t *testing.T) {
	h := newHarness()
	a := videoInvited(h, "video@example.com")
	in := hiring.VideoCompletion{ApplicantID: a.ID, Token: "tok-123", VideoPaths: clipPaths()}

	for i := 0; i < 2; i++ {
		got, err := h.ctrl.CompleteVideo(context.Background(), in)
		if err != nil {
			t.Fatalf("expected no error on call %d, got %v", i+1, err)
		}
		if got.Status != hiring.StatusVideoScoring {
			t.Fatalf("expected video_scoring, got %s", got.Status)
		}
	}
	if n := h.store.transitions[hiring.StatusVideoScoring]; n != 1 {
		t.Fatalf("expected one transition, got %d", n)
	}
	if n := h.queue.count(events.VideoCompleted{}.EventName()); n != 1 {
		t.Fatalf("expected one queued video task, got %d", n)
	}
}

func TestCompleteVideoValidatesClipCount(t *testing.T) {
	h := newHarness()
	a := videoInvited(h, "video@example.com")
	_, err := h.ctrl.CompleteVideo(context.Background(), hiring.VideoCompletion{ApplicantID: a.ID, Token: "tok-123", VideoPaths: clipPaths()[:3]})
	if !errors.Is(err, hiring.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func videoScoring(h *harness, email string) hiring.Applicant {
	p := pendingApplicant(email)
	p.Status = hiring.StatusVideoScoring
	p.VideoPaths = clipPaths()
	return h.store.put(p)
}

func TestProcessVideoPassInvitesToZoom(t *testing.T) {
	h := newHarness()
	a := videoScoring(h, "zoom@example.com")
	h.scorer.video = passingScore(hiring.StageVideo, 78)

	if err := h.ctrl.ProcessVideo(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusZoomInvited || got.VideoScore == nil || got.ZoomInvitedAt == nil {
		t.Fatalf("expected zoom_invited with score, got %+v", got)
	}
	invite, ok := h.notifier.find(hiring.TemplateZoomInvite)
	if !ok || invite.Vars[hiring.VarLink] != "https://cal.example.com/founders/interview" {
		t.Fatalf("expected zoom_invite with cal link, got %+v", invite)
	}
}

func TestProcessVideoFailRejects(t *testing.T) {
	h := newHarness()
	a := videoScoring(h, "nozoom@example.com")
	h.scorer.video = failingScore(hiring.StageVideo, 41)

	if err := h.ctrl.ProcessVideo(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	rejection, ok := h.notifier.find(hiring.TemplateRejection)
	if !ok || rejection.Stage != hiring.StageVideo {
		t.Fatalf("expected video-stage rejection, got %+v", rejection)
	}
}

func TestProcessVideoOversizedClipRejectsWithoutEscalation(t *testing.T) {
	h := newHarness()
	a := videoScoring(h, "bigclip@example.com")
	h.media.clipErr = hiring.Invalid("media", "object clips/1.webm exceeds 1024 bytes")

	if err := h.ctrl.ProcessVideo(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.scorer.vidCalls != 0 {
		t.Fatalf("expected no provider call, got %d", h.scorer.vidCalls)
	}
	if len(h.escalator.calls) != 0 {
		t.Fatalf("expected no escalation, got %+v", h.escalator.calls)
	}
	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusRejected || got.Decision == nil || *got.Decision != hiring.DecisionReject {
		t.Fatalf("expected rejected with reject decision, got %+v", got)
	}
	if got.VideoScore != nil {
		t.Fatalf("expected no video score, got %+v", got.VideoScore)
	}
	if len(h.notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(h.notifier.sent))
	}
	n := h.notifier.sent[0]
	if n.Template != hiring.TemplateRejection || n.Audience != hiring.AudienceCandidate || n.Stage != hiring.StageVideo {
		t.Fatalf("expected candidate video rejection, got %+v", n)
	}
}

func TestProcessVideoDownloadFailureEscalates(t *testing.T) {
	h := newHarness()
	a := videoScoring(h, "clip@example.com")
	h.media.clipErr = errBoom

	if err := h.ctrl.ProcessVideo(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.scorer.vidCalls != 0 {
		t.Fatalf("expected no provider call, got %d", h.scorer.vidCalls)
	}
	if len(h.escalator.calls) != 1 || h.escalator.calls[0].stage != hiring.StageVideo {
		t.Fatalf("expected one video escalation, got %+v", h.escalator.calls)
	}
	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusVideoScoring {
		t.Fatalf("expected video_scoring, got %s", got.Status)
	}
}

func zoomInvited(h *harness, email string) hiring.Applicant {
	p := pendingApplicant(email)
	p.Status = hiring.StatusZoomInvited
	invited := h.store.now.Add(-time.Hour)
	p.ZoomInvitedAt = &invited
	return h.store.put(p)
}

func TestReplayedBookingSchedulesOnce(t *testing.T) {
	h := newHarness()
	a := zoomInvited(h, "book@example.com")
	start := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC)
	booking := hiring.Booking{Email: "Book@Example.com", StartTime: &start, MeetingURL: "https://zoom.example.com/j/1"}

	first, err := h.ctrl.ConfirmBooking(context.Background(), booking)
	if err != nil || first.AlreadyScheduled {
		t.Fatalf("expected first booking to schedule, got %+v %v", first, err)
	}
	second, err := h.ctrl.ConfirmBooking(context.Background(), booking)
	if err != nil || !second.AlreadyScheduled {
		t.Fatalf("expected replay to report already scheduled, got %+v %v", second, err)
	}

	if n := h.store.transitions[hiring.StatusZoomScheduled]; n != 1 {
		t.Fatalf("expected exactly one zoom_scheduled transition, got %d", n)
	}
	if n := h.notifier.count(hiring.TemplateFounderDossier); n != 1 {
		t.Fatalf("expected one founder_dossier, got %d", n)
	}
	got, _ := h.store.Get(context.Background(), a.ID)
	if got.BookingURL == nil || *got.BookingURL != "https://zoom.example.com/j/1" || !got.InterviewAt.Equal(start) {
		t.Fatalf("expected booking details stored, got %+v", got)
	}
}

func TestReplayedBookingAfterReapplyIsAlreadyScheduled(t *testing.T) {
	h := newHarness()
	prior := zoomInvited(h, "again@example.com")
	start := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC)
	booking := hiring.Booking{Email: "again@example.com", StartTime: &start, MeetingURL: "https://zoom.example.com/j/2"}
	if _, err := h.ctrl.ConfirmBooking(context.Background(), booking); err != nil {
		t.Fatalf("expected first booking to schedule, got %v", err)
	}

	later := pendingApplicant("again@example.com")
	later.Status = hiring.StatusRejected
	later.AppliedAt = h.store.now.Add(24 * time.Hour)
	h.store.put(later)

	res, err := h.ctrl.ConfirmBooking(context.Background(), booking)
	if err != nil || !res.AlreadyScheduled {
		t.Fatalf("expected replay to report already scheduled, got %+v %v", res, err)
	}
	if res.Applicant.ID != prior.ID {
		t.Fatalf("expected replay to resolve to %s, got %s", prior.ID, res.Applicant.ID)
	}
	if n := h.store.transitions[hiring.StatusZoomScheduled]; n != 1 {
		t.Fatalf("expected exactly one zoom_scheduled transition, got %d", n)
	}
}

func TestBookingForUnknownOrEarlyApplicantIsNotFound(t *testing.T) {
	h := newHarness()
	h.store.put(pendingApplicant("early@example.com"))

	for _, email := range []string{"nobody@example.com", "early@example.com"} {
		_, err := h.ctrl.ConfirmBooking(context.Background(), hiring.Booking{Email: email})
		if !errors.Is(err, hiring.ErrNotFound) {
			t.Fatalf("expected not found for %s, got %v", email, err)
		}
	}
}

func TestBookingForApplicationStageRejectIsNotFound(t *testing.T) {
	h := newHarness()
	p := pendingApplicant("rejected@example.com")
	p.Status = hiring.StatusRejected
	h.store.put(p)

	_, err := h.ctrl.ConfirmBooking(context.Background(), hiring.Booking{Email: "rejected@example.com"})
	if !errors.Is(err, hiring.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func zoomScheduled(h *harness, email string, app, video int) hiring.Applicant {
	p := pendingApplicant(email)
	p.Status = hiring.StatusZoomScheduled
	appScore := passingScore(hiring.StageApplication, app)
	videoScore := passingScore(hiring.StageVideo, video)
	p.AppScore = &appScore
	p.VideoScore = &videoScore
	return h.store.put(p)
}

func interview(gut hiring.GutCheck, ratings ...int) hiring.InterviewScores {
	return hiring.InterviewScores{
		Dependability: ratings[0], ProblemSolving: ratings[1], CustomerInteraction: ratings[2],
		PracticalSkills: ratings[3], Coachability: ratings[4], GrowthMindset: ratings[5],
		GutCheck: gut,
	}
}

func TestInterviewThroughDecisionHires(t *testing.T) {
	h := newHarness()
	a := zoomScheduled(h, "hire@example.com", 82, 78)

	got, err := h.ctrl.RecordInterview(context.Background(), hiring.InterviewSubmission{
		ApplicantID: a.ID,
		Scores:      interview(hiring.GutYes, 5, 5, 4, 5, 4, 5),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Status != hiring.StatusPendingDecision {
		t.Fatalf("expected pending_decision, got %s", got.Status)
	}
	if n := h.queue.count(events.InterviewRecorded{}.EventName()); n != 1 {
		t.Fatalf("expected one queued decision task, got %d", n)
	}

	if err := h.ctrl.FinalizeDecision(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ = h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusHired || got.FinalComposite == nil || *got.FinalComposite != 87 {
		t.Fatalf("expected hired at 87, got %s %v", got.Status, got.FinalComposite)
	}
	if n := h.notifier.count(hiring.TemplateOffer); n != 1 {
		t.Fatalf("expected one offer, got %d", n)
	}
	summary, ok := h.notifier.find(hiring.TemplateDecisionSummary)
	if !ok || summary.Vars[hiring.VarFinal] != "87" || summary.Vars[hiring.VarZoomAverage] != "4.7" {
		t.Fatalf("expected decision summary with 87 and 4.7, got %+v", summary.Vars)
	}
}

func TestGutNoRoutesToFounderReview(t *testing.T) {
	h := newHarness()
	a := zoomScheduled(h, "gut@example.com", 100, 100)
	if _, err := h.ctrl.RecordInterview(context.Background(), hiring.InterviewSubmission{
		ApplicantID: a.ID, Scores: interview(hiring.GutNo, 5, 5, 5, 5, 5, 5),
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := h.ctrl.FinalizeDecision(context.Background(), a.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ := h.store.Get(context.Background(), a.ID)
	if got.Status != hiring.StatusReviewNeeded {
		t.Fatalf("expected review_needed, got %s", got.Status)
	}
	if n := h.notifier.count(hiring.TemplateFounderReview); n != 1 {
		t.Fatalf("expected one founder_review, got %d", n)
	}
	if n := h.notifier.count(hiring.TemplateOffer); n != 0 {
		t.Fatalf("expected no offer, got %d", n)
	}
}

func TestRecordInterviewRequiresZoomScheduled(t *testing.T) {
	h := newHarness()
	a := zoomInvited(h, "early@example.com")
	_, err := h.ctrl.RecordInterview(context.Background(), hiring.InterviewSubmission{
		ApplicantID: a.ID, Scores: interview(hiring.GutYes, 3, 3, 3, 3, 3, 3),
	})
	if !errors.Is(err, hiring.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestResolveReviewHiresAndRejectsSecondAttempt(t *testing.T) {
	h := newHarness()
	p := pendingApplicant("review@example.com")
	p.Status = hiring.StatusReviewNeeded
	a := h.store.put(p)

	got, err := h.ctrl.ResolveReview(context.Background(), hiring.Resolution{ApplicantID: a.ID, Decision: hiring.DecisionHire})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Status != hiring.StatusHired || got.ResolvedAt == nil {
		t.Fatalf("expected hired with resolution time, got %+v", got)
	}
	if n := h.notifier.count(hiring.TemplateOffer); n != 1 {
		t.Fatalf("expected one offer, got %d", n)
	}

	_, err = h.ctrl.ResolveReview(context.Background(), hiring.Resolution{ApplicantID: a.ID, Decision: hiring.DecisionReject})
	if !errors.Is(err, hiring.ErrConflict) {
		t.Fatalf("expected conflict on second resolution, got %v", err)
	}
}

func TestResolveReviewRejectsReviewDecision(t *testing.T) {
	h := newHarness()
	_, err := h.ctrl.ResolveReview(context.Background(), hiring.Resolution{Decision: hiring.DecisionReview})
	if !errors.Is(err, hiring.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRedriveQueuesParkedStages(t *testing.T) {
	h := newHarness()
	old := h.store.now.Add(-3 * time.Hour)

	pending := pendingApplicant("p@example.com")
	pending.UpdatedAt = old
	h.store.put(pending)

	scoring := pendingApplicant("s@example.com")
	scoring.Status = hiring.StatusVideoScoring
	scoring.UpdatedAt = old
	h.store.put(scoring)

	fresh := pendingApplicant("f@example.com")
	fresh.UpdatedAt = h.store.now
	h.store.put(fresh)

	n, err := h.ctrl.RedriveParked(context.Background(), time.Hour, 50)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 2 {
		t.Fatalf("expected two redriven applicants, got %d", n)
	}
	if h.queue.count(events.ApplicationSubmitted{}.EventName()) != 1 || h.queue.count(events.VideoCompleted{}.EventName()) != 1 {
		t.Fatalf("expected one task per parked stage, got %v", h.queue.names)
	}
}

func TestRedriveRefusesNonParkedStatus(t *testing.T) {
	h := newHarness()
	a := zoomInvited(h, "z@example.com")
	if err := h.ctrl.Redrive(context.Background(), a.ID); !errors.Is(err, hiring.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
