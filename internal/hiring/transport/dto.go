// Package transport holds the JSON request and response shapes of the
// hiring API.
package transport

import (
	"time"

	"hiring_pipeline_backend/internal/hiring"

	"github.com/google/uuid"
)

// ApplicationRequest is the public intake form.
type ApplicationRequest struct {
	Name      string  `json:"name" validate:"required,notblank,maxrunes=200"`
	Email     string  `json:"email" validate:"required,email,max=320"`
	Phone     string  `json:"phone" validate:"omitempty,max=30"`
	Source    string  `json:"source" validate:"required,oneof=referral direct board_a board_b"`
	Q1        string  `json:"q1" validate:"required,notblank,maxrunes=3000"`
	Q2        string  `json:"q2" validate:"required,notblank,maxrunes=3000"`
	Q3        string  `json:"q3" validate:"required,notblank,maxrunes=3000"`
	Q4        string  `json:"q4" validate:"required,notblank,maxrunes=3000"`
	Q5        string  `json:"q5" validate:"required,notblank,maxrunes=3000"`
	Q6        string  `json:"q6" validate:"required,notblank,maxrunes=3000"`
	ResumeRef *string `json:"resumeRef" validate:"omitempty,max=500"`
}

// Intake converts the form to the domain shape.
func (r ApplicationRequest) Intake() hiring.Intake {
	return hiring.Intake{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Source:     hiring.Source(r.Source),
		Answers:    hiring.Answers{r.Q1, r.Q2, r.Q3, r.Q4, r.Q5, r.Q6},
		ResumePath: r.ResumeRef,
	}
}

// ApplicationAccepted is returned once an application is queued for scoring.
type ApplicationAccepted struct {
	ID     uuid.UUID     `json:"id"`
	Status hiring.Status `json:"status"`
}

// UploadKind selects the bucket an upload lands in.
type UploadKind string

const (
	UploadResume UploadKind = "resume"
	UploadVideo  UploadKind = "video"
)

// PresignedUploadRequest asks for a presigned PUT URL.
type PresignedUploadRequest struct {
	Kind        UploadKind `json:"kind" validate:"required,oneof=resume video"`
	FileName    string     `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string     `json:"contentType" validate:"required,min=1,max=100"`
	SizeBytes   int64      `json:"sizeBytes" validate:"required,min=1"`
}

// PresignedUploadResponse is the response containing the presigned URL for uploading.
type PresignedUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
	ExpiresAt int64  `json:"expiresAt"` // Unix timestamp
}

// VideoCompletionRequest is posted by the recording app once every clip is stored.
type VideoCompletionRequest struct {
	Token      string   `json:"token" validate:"required,min=1,max=200"`
	VideoPaths []string `json:"videoPaths" validate:"required,len=5,dive,required,max=500"`
}

// InterviewRequest carries the interviewer's ratings.
type InterviewRequest struct {
	Dependability       int    `json:"dependability" validate:"required,min=1,max=5"`
	ProblemSolving      int    `json:"problemSolving" validate:"required,min=1,max=5"`
	CustomerInteraction int    `json:"customerInteraction" validate:"required,min=1,max=5"`
	PracticalSkills     int    `json:"practicalSkills" validate:"required,min=1,max=5"`
	Coachability        int    `json:"coachability" validate:"required,min=1,max=5"`
	GrowthMindset       int    `json:"growthMindset" validate:"required,min=1,max=5"`
	GutCheck            string `json:"gutCheck" validate:"required,oneof=yes no maybe"`
	Notes               string `json:"notes" validate:"omitempty,maxrunes=3000"`
}

// Scores converts the request to the domain shape.
func (r InterviewRequest) Scores() hiring.InterviewScores {
	return hiring.InterviewScores{
		Dependability:       r.Dependability,
		ProblemSolving:      r.ProblemSolving,
		CustomerInteraction: r.CustomerInteraction,
		PracticalSkills:     r.PracticalSkills,
		Coachability:        r.Coachability,
		GrowthMindset:       r.GrowthMindset,
		GutCheck:            hiring.GutCheck(r.GutCheck),
		Notes:               r.Notes,
	}
}

// ResolutionRequest is a founder's decision on a review_needed applicant.
type ResolutionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=hire reject"`
}

// RedriveParkedRequest re-queues parked applicants older than a threshold.
type RedriveParkedRequest struct {
	OlderThanMinutes int `json:"olderThanMinutes" validate:"min=0,max=43200"`
	Limit            int `json:"limit" validate:"omitempty,min=1,max=500"`
}

// RedriveParkedResponse reports how many applicants were re-queued.
type RedriveParkedResponse struct {
	Queued int `json:"queued"`
}

// ListApplicantsRequest filters the admin list.
type ListApplicantsRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=pending_ai video_invited video_scoring zoom_invited zoom_scheduled pending_decision hired rejected review_needed"`
	Source string `form:"source" validate:"omitempty,oneof=referral direct board_a board_b"`
	Search string `form:"search" validate:"omitempty,max=100"`
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Size   int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// ApplicantSummary is one row of the admin list.
type ApplicantSummary struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Source         hiring.Source    `json:"source"`
	Status         hiring.Status    `json:"status"`
	AppComposite   *int             `json:"appComposite,omitempty"`
	VideoComposite *int             `json:"videoComposite,omitempty"`
	FinalComposite *int             `json:"finalComposite,omitempty"`
	Decision       *hiring.Decision `json:"decision,omitempty"`
	AppliedAt      time.Time        `json:"appliedAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// ApplicantListResponse is a page of applicants.
type ApplicantListResponse struct {
	Items      []ApplicantSummary `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

// ApplicantResponse is the full admin view of one applicant.
type ApplicantResponse struct {
	ID               uuid.UUID               `json:"id"`
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone,omitempty"`
	Source           hiring.Source           `json:"source"`
	Status           hiring.Status           `json:"status"`
	Answers          []AnswerResponse        `json:"answers"`
	ResumePath       *string                 `json:"resumePath,omitempty"`
	VideoPaths       []string                `json:"videoPaths,omitempty"`
	AppScore         *hiring.Score           `json:"appScore,omitempty"`
	VideoScore       *hiring.Score           `json:"videoScore,omitempty"`
	Interview        *hiring.InterviewScores `json:"interview,omitempty"`
	FinalComposite   *int                    `json:"finalComposite,omitempty"`
	Decision         *hiring.Decision        `json:"decision,omitempty"`
	BookingURL       *string                 `json:"bookingUrl,omitempty"`
	InterviewAt      *time.Time              `json:"interviewAt,omitempty"`
	AppliedAt        time.Time               `json:"appliedAt"`
	VideoInvitedAt   *time.Time              `json:"videoInvitedAt,omitempty"`
	VideoCompletedAt *time.Time              `json:"videoCompletedAt,omitempty"`
	ZoomInvitedAt    *time.Time              `json:"zoomInvitedAt,omitempty"`
	ZoomScheduledAt  *time.Time              `json:"zoomScheduledAt,omitempty"`
	DecisionAt       *time.Time              `json:"decisionAt,omitempty"`
	ResolvedAt       *time.Time              `json:"resolvedAt,omitempty"`
	UpdatedAt        time.Time               `json:"updatedAt"`
	Timeline         []hiring.TimelineEntry  `json:"timeline"`
}

// AnswerResponse pairs a question with the applicant's answer.
type AnswerResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EscalationListResponse lists recent escalations.
type EscalationListResponse struct {
	Items []hiring.Escalation `json:"items"`
}

// ToSummary maps an applicant to a list row.
func ToSummary(a hiring.Applicant) ApplicantSummary {
	return ApplicantSummary{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Source:         a.Source,
		Status:         a.Status,
		AppComposite:   composite(a.AppScore),
		VideoComposite: composite(a.VideoScore),
		FinalComposite: a.FinalComposite,
		Decision:       a.Decision,
		AppliedAt:      a.AppliedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ToResponse maps an applicant and its timeline to the detail view.
func ToResponse(a hiring.Applicant, timeline []hiring.TimelineEntry) ApplicantResponse {
	answers := make([]AnswerResponse, 0, hiring.AnswerCount)
	for i, answer := range a.Answers {
		answers = append(answers, AnswerResponse{Question: hiring.QuestionLabels[i], Answer: answer})
	}
	if timeline == nil {
		timeline = []hiring.TimelineEntry{}
	}
	return ApplicantResponse{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Phone:            a.Phone,
		Source:           a.Source,
		Status:           a.Status,
		Answers:          answers,
		ResumePath:       a.ResumePath,
		VideoPaths:       a.VideoPaths,
		AppScore:         a.AppScore,
		VideoScore:       a.VideoScore,
		Interview:        a.Interview,
		FinalComposite:   a.FinalComposite,
		Decision:         a.Decision,
		BookingURL:       a.BookingURL,
		InterviewAt:      a.InterviewAt,
		AppliedAt:        a.AppliedAt,
		VideoInvitedAt:   a.VideoInvitedAt,
		VideoCompletedAt: a.VideoCompletedAt,
		ZoomInvitedAt:    a.ZoomInvitedAt,
		ZoomScheduledAt:  a.ZoomScheduledAt,
		DecisionAt:       a.DecisionAt,
		ResolvedAt:       a.ResolvedAt,
		UpdatedAt:        a.UpdatedAt,
		Timeline:         timeline,
	}
}

func composite(s *hiring.Score) *int {
	if s == nil {
		return nil
	}
	v := s.Composite
	return &v
}
