package hiring

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"hiring_pipeline_backend/platform/phone"
	"hiring_pipeline_backend/platform/sanitize"
)

// Field ceilings for applicant-supplied text.
const (
	MaxAnswerRunes = 3000
	MaxNameRunes   = 200
	MaxEmailRunes  = 320
	MaxPhoneRunes  = 30
	MaxNotesRunes  = 3000
	VideoClipCount = 5
)

// NormalizeEmail lower-cases and trims an address for storage and dedup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeIntake validates an application and returns its canonical form:
// trimmed, HTML-stripped text, normalized email and E.164 phone when parseable.
func NormalizeIntake(in Intake) (Intake, error) {
	out := in
	out.Name = sanitize.Text(in.Name)
	if out.Name == "" {
		return Intake{}, Invalid("name", "is required")
	}
	if utf8.RuneCountInString(out.Name) > MaxNameRunes {
		return Intake{}, Invalid("name", fmt.Sprintf("must be at most %d characters", MaxNameRunes))
	}

	out.Email = NormalizeEmail(in.Email)
	if out.Email == "" {
		return Intake{}, Invalid("email", "is required")
	}
	if utf8.RuneCountInString(out.Email) > MaxEmailRunes || !strings.Contains(out.Email, "@") {
		return Intake{}, Invalid("email", "is not a valid address")
	}
	if addr, err := mail.ParseAddress(out.Email); err != nil || addr.Address != out.Email {
		return Intake{}, Invalid("email", "is not a valid address")
	}

	rawPhone := strings.TrimSpace(in.Phone)
	if utf8.RuneCountInString(rawPhone) > MaxPhoneRunes {
		return Intake{}, Invalid("phone", fmt.Sprintf("must be at most %d characters", MaxPhoneRunes))
	}
	out.Phone = phone.NormalizeE164(rawPhone)

	if !in.Source.Valid() {
		return Intake{}, Invalid("source", "must be one of referral, direct, board_a, board_b")
	}

	for i, answer := range in.Answers {
		cleaned := sanitize.Text(answer)
		field := fmt.Sprintf("answers[%d]", i)
		if cleaned == "" {
			return Intake{}, Invalid(field, "is required")
		}
		if utf8.RuneCountInString(cleaned) > MaxAnswerRunes {
			return Intake{}, Invalid(field, fmt.Sprintf("must be at most %d characters", MaxAnswerRunes))
		}
		out.Answers[i] = cleaned
	}

	if in.ResumePath != nil {
		p := strings.TrimSpace(*in.ResumePath)
		if p == "" {
			out.ResumePath = nil
		} else {
			out.ResumePath = &p
		}
	}
	return out, nil
}

// ValidateInterview checks the six ratings, the gut check and the notes
// length, and returns the scores with sanitized notes.
func ValidateInterview(s InterviewScores) (InterviewScores, error) {
	names := [6]string{"dependability", "problemSolving", "customerInteraction", "practicalSkills", "coachability", "growthMindset"}
	for i, r := range s.Ratings() {
		if r < 1 || r > 5 {
			return InterviewScores{}, Invalid(names[i], "must be between 1 and 5")
		}
	}
	switch s.GutCheck {
	case GutYes, GutNo, GutMaybe:
	default:
		return InterviewScores{}, Invalid("gutCheck", "must be yes, no or maybe")
	}
	s.Notes = sanitize.Text(s.Notes)
	if utf8.RuneCountInString(s.Notes) > MaxNotesRunes {
		return InterviewScores{}, Invalid("notes", fmt.Sprintf("must be at most %d characters", MaxNotesRunes))
	}
	return s, nil
}

// ValidateVideoPaths checks a completion carries one non-empty object key per prompt.
func ValidateVideoPaths(paths []string) error {
	if len(paths) != VideoClipCount {
		return Invalid("videoPaths", fmt.Sprintf("must contain exactly %d clips", VideoClipCount))
	}
	for i, p := range paths {
		if strings.TrimSpace(p) == "" {
			return Invalid(fmt.Sprintf("videoPaths[%d]", i), "is required")
		}
	}
	return nil
}
