package hiring

import (
	"time"

	"github.com/google/uuid"
)

// Source is the channel an applicant came through.
type Source string

const (
	SourceReferral Source = "referral"
	SourceDirect   Source = "direct"
	SourceBoardA   Source = "board_a"
	SourceBoardB   Source = "board_b"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceReferral, SourceDirect, SourceBoardA, SourceBoardB:
		return true
	}
	return false
}

// Label returns the human-readable source name for founder-facing reports.
func (s Source) Label() string {
	switch s {
	case SourceReferral:
		return "Referral"
	case SourceDirect:
		return "Direct"
	case SourceBoardA:
		return "Indeed"
	case SourceBoardB:
		return "Handshake"
	}
	return string(s)
}

// AnswerCount is the number of free-text application questions.
const AnswerCount = 6

// Answers holds the six application responses in question order:
// transport, tools, project, problem, availability, interest.
type Answers [AnswerCount]string

// QuestionLabels names each answer slot for prompts and dossiers.
var QuestionLabels = [AnswerCount]string{
	"Reliable transportation",
	"Tools and equipment experience",
	"A project you are proud of",
	"Solving an unexpected problem",
	"Weekly availability",
	"Why this role",
}

// Decision is the final hiring outcome.
type Decision string

const (
	DecisionHire   Decision = "hire"
	DecisionReview Decision = "review"
	DecisionReject Decision = "reject"
)

// GutCheck is the interviewer's overall impression.
type GutCheck string

const (
	GutYes   GutCheck = "yes"
	GutNo    GutCheck = "no"
	GutMaybe GutCheck = "maybe"
)

// InterviewScores are the six 1–5 interview ratings plus the gut check.
type InterviewScores struct {
	Dependability       int      `json:"dependability"`
	ProblemSolving      int      `json:"problemSolving"`
	CustomerInteraction int      `json:"customerInteraction"`
	PracticalSkills     int      `json:"practicalSkills"`
	Coachability        int      `json:"coachability"`
	GrowthMindset       int      `json:"growthMindset"`
	GutCheck            GutCheck `json:"gutCheck"`
	Notes               string   `json:"notes,omitempty"`
}

// Ratings returns the six ratings in a fixed order.
func (s InterviewScores) Ratings() [6]int {
	return [6]int{s.Dependability, s.ProblemSolving, s.CustomerInteraction, s.PracticalSkills, s.Coachability, s.GrowthMindset}
}

// Applicant is one candidate's record through the whole pipeline.
type Applicant struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          string
	Source         Source
	Answers        Answers
	ResumePath     *string
	VideoPaths     []string
	VideoToken     *string
	Status         Status
	AppScore       *Score
	VideoScore     *Score
	Interview      *InterviewScores
	FinalComposite *int
	Decision       *Decision
	BookingURL     *string
	InterviewAt    *time.Time

	AppliedAt        time.Time
	VideoInvitedAt   *time.Time
	VideoCompletedAt *time.Time
	ZoomInvitedAt    *time.Time
	ZoomScheduledAt  *time.Time
	DecisionAt       *time.Time
	ResolvedAt       *time.Time
	UpdatedAt        time.Time
}

// FirstName returns the first word of the applicant's name for greetings.
func (a Applicant) FirstName() string {
	for i, r := range a.Name {
		if r == ' ' {
			return a.Name[:i]
		}
	}
	return a.Name
}

// Patch lists the fields a transition writes alongside the new status. Nil
// fields are left untouched; score fields are write-once at the storage layer.
type Patch struct {
	To               Status
	VideoToken       *string
	VideoPaths       []string
	AppScore         *Score
	VideoScore       *Score
	Interview        *InterviewScores
	FinalComposite   *int
	Decision         *Decision
	BookingURL       *string
	InterviewAt      *time.Time
	VideoInvitedAt   *time.Time
	VideoCompletedAt *time.Time
	ZoomInvitedAt    *time.Time
	ZoomScheduledAt  *time.Time
	DecisionAt       *time.Time
	ResolvedAt       *time.Time
}

// Apply returns a copy of a with the patch applied, mirroring what the store
// persists. Write-once fields keep their existing value.
func (p Patch) Apply(a Applicant, now time.Time) Applicant {
	a.Status = p.To
	a.UpdatedAt = now
	if p.VideoToken != nil && a.VideoToken == nil {
		a.VideoToken = p.VideoToken
	}
	if p.VideoPaths != nil {
		a.VideoPaths = append([]string(nil), p.VideoPaths...)
	}
	if p.AppScore != nil && a.AppScore == nil {
		a.AppScore = p.AppScore
	}
	if p.VideoScore != nil && a.VideoScore == nil {
		a.VideoScore = p.VideoScore
	}
	if p.Interview != nil {
		a.Interview = p.Interview
	}
	if p.FinalComposite != nil {
		a.FinalComposite = p.FinalComposite
	}
	if p.Decision != nil {
		a.Decision = p.Decision
	}
	if p.BookingURL != nil {
		a.BookingURL = p.BookingURL
	}
	if p.InterviewAt != nil {
		a.InterviewAt = p.InterviewAt
	}
	setIfNil(&a.VideoInvitedAt, p.VideoInvitedAt)
	setIfNil(&a.VideoCompletedAt, p.VideoCompletedAt)
	setIfNil(&a.ZoomInvitedAt, p.ZoomInvitedAt)
	setIfNil(&a.ZoomScheduledAt, p.ZoomScheduledAt)
	if p.DecisionAt != nil {
		a.DecisionAt = p.DecisionAt
	}
	if p.ResolvedAt != nil {
		a.ResolvedAt = p.ResolvedAt
	}
	return a
}

func setIfNil(dst **time.Time, v *time.Time) {
	if v != nil && *dst == nil {
		*dst = v
	}
}

// Intake is an application as submitted by the candidate.
type Intake struct {
	Name       string
	Email      string
	Phone      string
	Source     Source
	Answers    Answers
	ResumePath *string
}

// VideoCompletion is posted by the recording app after all clips are uploaded.
type VideoCompletion struct {
	ApplicantID uuid.UUID
	Token       string
	VideoPaths  []string
}

// Booking is the parsed booking webhook.
type Booking struct {
	Email      string
	StartTime  *time.Time
	StartRaw   string
	MeetingURL string
}

// InterviewSubmission carries the interviewer's ratings for one applicant.
type InterviewSubmission struct {
	ApplicantID uuid.UUID
	Scores      InterviewScores
}

// Resolution is a founder's manual decision on a review_needed applicant.
type Resolution struct {
	ApplicantID uuid.UUID
	Decision    Decision
	ResolvedBy  *uuid.UUID
}

// PreferForBooking reports whether a should answer a booking email ahead of
// b: the row awaiting a booking first, then rows that already reached
// zoom_invited, then the newest application.
func PreferForBooking(a, b Applicant) bool {
	if az, bz := a.Status == StatusZoomInvited, b.Status == StatusZoomInvited; az != bz {
		return az
	}
	if ai, bi := a.ZoomInvitedAt != nil, b.ZoomInvitedAt != nil; ai != bi {
		return ai
	}
	return a.AppliedAt.After(b.AppliedAt)
}
