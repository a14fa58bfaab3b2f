package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hiring_pipeline_backend/internal/events"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/scoring"
	"hiring_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type memStore struct {
	mu          sync.Mutex
	applicants  map[uuid.UUID]hiring.Applicant
	transitions map[hiring.Status]int
	now         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		applicants:  make(map[uuid.UUID]hiring.Applicant),
		transitions: make(map[hiring.Status]int),
		now:         time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) put(a hiring.Applicant) hiring.Applicant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = s.now
	}
	s.applicants[a.ID] = a
	return a
}

func (s *memStore) Create(_ context.Context, in hiring.Intake) (hiring.Applicant, error) {
	return s.put(hiring.Applicant{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Source:     in.Source,
		Answers:    in.Answers,
		ResumePath: in.ResumePath,
		Status:     hiring.StatusPendingAI,
	}), nil
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (hiring.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[id]
	if !ok {
		return hiring.Applicant{}, hiring.ErrNotFound
	}
	return a, nil
}

func (s *memStore) FindForBooking(_ context.Context, email string) (hiring.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []hiring.Applicant
	for _, a := range s.applicants {
		if a.Email == email {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return hiring.Applicant{}, hiring.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		return hiring.PreferForBooking(matches[i], matches[j])
	})
	return matches[0], nil
}

func (s *memStore) HasAdvancedDuplicate(_ context.Context, email string, selfID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.applicants {
		if a.Email == email && a.ID != selfID && a.Status != hiring.StatusPendingAI {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Transition(_ context.Context, id uuid.UUID, from hiring.Status, p hiring.Patch) (hiring.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[id]
	if !ok {
		return hiring.Applicant{}, hiring.ErrNotFound
	}
	if a.Status != from {
		return hiring.Applicant{}, hiring.ErrConflict
	}
	a = p.Apply(a, s.now)
	s.applicants[id] = a
	s.transitions[p.To]++
	return a, nil
}

func (s *memStore) ListParked(_ context.Context, statuses []hiring.Status, cutoff time.Time, limit int) ([]hiring.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []hiring.Applicant
	for _, a := range s.applicants {
		for _, st := range statuses {
			if a.Status == st && a.UpdatedAt.Before(cutoff) {
				out = append(out, a)
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeScorer struct {
	mu        sync.Mutex
	app       hiring.Score
	appErr    error
	video     hiring.Score
	videoErr  error
	appCalls  int
	vidCalls  int
	lastInput scoring.ApplicationInput
}

func (f *fakeScorer) ScoreApplication(_ context.Context, in scoring.ApplicationInput) (hiring.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appCalls++
	f.lastInput = in
	return f.app, f.appErr
}

func (f *fakeScorer) ScoreVideo(_ context.Context, in scoring.VideoInput) (hiring.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vidCalls++
	return f.video, f.videoErr
}

type fakeMedia struct {
	resume    []byte
	resumeErr error
	clipErr   error
}

func (f *fakeMedia) FetchResume(context.Context, string) ([]byte, error) {
	return f.resume, f.resumeErr
}

func (f *fakeMedia) FetchClip(_ context.Context, path string) (scoring.Clip, error) {
	if f.clipErr != nil {
		return scoring.Clip{}, f.clipErr
	}
	return scoring.Clip{MIMEType: "video/webm", Data: []byte(path)}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []hiring.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n hiring.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) count(tmpl hiring.Template) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Template == tmpl {
			n++
		}
	}
	return n
}

func (r *recordingNotifier) find(tmpl hiring.Template) (hiring.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sent {
		if s.Template == tmpl {
			return s, true
		}
	}
	return hiring.Notification{}, false
}

type escalation struct {
	applicantID *uuid.UUID
	stage       hiring.Stage
	err         error
}

type recordingEscalator struct {
	mu    sync.Mutex
	calls []escalation
}

func (r *recordingEscalator) Report(_ context.Context, id *uuid.UUID, stage hiring.Stage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, escalation{applicantID: id, stage: stage, err: err})
}

type fixedTokens string

func (t fixedTokens) NewToken() (string, error) { return string(t), nil }

type queued struct {
	mu    sync.Mutex
	names []string
	fail  error
}

func (q *queued) handler() events.Handler {
	return events.HandlerFunc(func(_ context.Context, e events.Event) error {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.fail != nil {
			return q.fail
		}
		q.names = append(q.names, e.EventName())
		return nil
	})
}

func (q *queued) count(name string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, got := range q.names {
		if got == name {
			n++
		}
	}
	return n
}

type harness struct {
	ctrl      *Controller
	store     *memStore
	scorer    *fakeScorer
	media     *fakeMedia
	notifier  *recordingNotifier
	escalator *recordingEscalator
	queue     *queued
}

func newHarness() *harness {
	h := &harness{
		store:     newMemStore(),
		scorer:    &fakeScorer{},
		media:     &fakeMedia{},
		notifier:  &recordingNotifier{},
		escalator: &recordingEscalator{},
		queue:     &queued{},
	}
	bus := events.NewInMemoryBus(logger.Nop())
	for _, name := range []string{
		events.ApplicationSubmitted{}.EventName(),
		events.VideoCompleted{}.EventName(),
		events.InterviewRecorded{}.EventName(),
	} {
		bus.Subscribe(name, h.queue.handler())
	}
	h.ctrl = New(Deps{
		Store:     h.store,
		Scorer:    h.scorer,
		Media:     h.media,
		Notifier:  h.notifier,
		Escalator: h.escalator,
		Tokens:    fixedTokens("tok-123"),
		Bus:       bus,
	}, Options{VideoAppURL: "https://video.example.com/record", CalLink: "https://cal.example.com/founders/interview"}, logger.Nop())
	h.ctrl.SetClock(func() time.Time { return h.store.now })
	return h
}

func validAnswers() hiring.Answers {
	return hiring.Answers{
		"Yes, I drive my own truck.",
		"Drills, levels, stud finders and a miter saw.",
		"I built a workbench and wall storage for my dad's shop.",
		"A shelf bracket did not fit, so I re-measured and shimmed it.",
		"Weekdays and Saturdays, 30 hours.",
		"I like turning chaos into order.",
	}
}

func pendingApplicant(email string) hiring.Applicant {
	return hiring.Applicant{
		Name:    "Jordan Rivera",
		Email:   email,
		Source:  hiring.SourceDirect,
		Answers: validAnswers(),
		Status:  hiring.StatusPendingAI,
	}
}

func passingScore(stage hiring.Stage, composite int) hiring.Score {
	return hiring.Score{Stage: stage, Composite: composite, Pass: true, Summary: "Solid candidate."}
}

func failingScore(stage hiring.Stage, composite int) hiring.Score {
	return hiring.Score{Stage: stage, Composite: composite, Pass: false, Summary: "Thin answers."}
}

func clipPaths() []string {
	return []string{"v/1.webm", "v/2.webm", "v/3.webm", "v/4.webm", "v/5.webm"}
}

var errBoom = errors.New("boom")
