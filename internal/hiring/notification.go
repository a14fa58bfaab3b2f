package hiring

import "github.com/google/uuid"

// Template identifies a notification message.
type Template string

const (
	TemplateVideoInvite     Template = "video_invite"
	TemplateRejection       Template = "rejection"
	TemplateZoomInvite      Template = "zoom_invite"
	TemplateFounderDossier  Template = "founder_dossier"
	TemplateDecisionSummary Template = "decision_summary"
	TemplateFounderReview   Template = "founder_review"
	TemplateOffer           Template = "offer"
	TemplateStageUpdate     Template = "stage_update"
	TemplateEscalation      Template = "escalation_alert"
	TemplateWeeklyDigest    Template = "weekly_digest"
)

// Audience is who receives a notification.
type Audience string

const (
	AudienceCandidate Audience = "candidate"
	AudienceFounders  Audience = "founders"
	AudienceOperators Audience = "operators"
)

// Notification is one outbound message request. Vars carries template
// values; candidate-facing notifications never include scores or flags.
type Notification struct {
	Template    Template
	Audience    Audience
	ApplicantID *uuid.UUID
	Stage       Stage
	Vars        map[string]string
}

// CandidateFacing reports whether t is addressed to the applicant.
func (t Template) CandidateFacing() bool {
	switch t {
	case TemplateVideoInvite, TemplateRejection, TemplateZoomInvite, TemplateOffer:
		return true
	}
	return false
}

// Keys used in Notification.Vars.
const (
	VarLink          = "link"
	VarOutcome       = "outcome"
	VarStart         = "start"
	VarFinal         = "final_composite"
	VarDecision      = "decision"
	VarAppPoints     = "app_points"
	VarVideoPoints   = "video_points"
	VarZoomPoints    = "zoom_points"
	VarZoomAverage   = "zoom_average"
	VarGutOverride   = "gut_override"
	VarErrorMessage  = "error"
	VarErrorProvider = "provider"
)

// Stage update outcomes.
const (
	OutcomePassed   = "passed"
	OutcomeRejected = "rejected"
)
