package hiring

import (
	"errors"
	"strings"
	"testing"
)

func validIntake() Intake {
	return Intake{
		Name:   "Jordan Reyes",
		Email:  "  Jordan@Example.com ",
		Phone:  "(720) 201-4567",
		Source: SourceBoardA,
		Answers: Answers{
			"I have my own truck.",
			"Drills, saws, socket sets.",
			"Built shelving for my parents' garage.",
			"Improvised a bracket when a part was missing.",
			"Weekdays after 2pm and weekends.",
			"I like hands-on work.",
		},
	}
}

func TestNormalizeIntakeCanonicalizes(t *testing.T) {
	out, err := NormalizeIntake(validIntake())
	if err != nil {
		t.Fatalf("expected valid intake, got %v", err)
	}
	if out.Email != "jordan@example.com" {
		t.Fatalf("expected normalized email, got %q", out.Email)
	}
	if out.Phone != "+17202014567" {
		t.Fatalf("expected E.164 phone, got %q", out.Phone)
	}
}

func TestNormalizeIntakeFieldErrors(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Intake)
		field string
	}{
		{"blank answer", func(in *Intake) { in.Answers[3] = "   " }, "answers[3]"},
		{"long answer", func(in *Intake) { in.Answers[0] = strings.Repeat("a", MaxAnswerRunes+1) }, "answers[0]"},
		{"long name", func(in *Intake) { in.Name = strings.Repeat("n", MaxNameRunes+1) }, "name"},
		{"email without at", func(in *Intake) { in.Email = "jordan.example.com" }, "email"},
		{"long phone", func(in *Intake) { in.Phone = strings.Repeat("1", MaxPhoneRunes+1) }, "phone"},
		{"unknown source", func(in *Intake) { in.Source = "craigslist" }, "source"},
	}
	for _, tc := range cases {
		in := validIntake()
		tc.mut(&in)
		_, err := NormalizeIntake(in)
		var verr *ValidationError
		if !errors.As(err, &verr) || !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if verr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, verr.Field)
		}
	}
}

func TestAnswerAtLimitIsAccepted(t *testing.T) {
	in := validIntake()
	in.Answers[5] = strings.Repeat("é", MaxAnswerRunes)
	if _, err := NormalizeIntake(in); err != nil {
		t.Fatalf("expected answer at limit to pass, got %v", err)
	}
}

func TestValidateInterviewRanges(t *testing.T) {
	s := interview([6]int{5, 5, 4, 5, 4, 5}, GutYes)
	if _, err := ValidateInterview(s); err != nil {
		t.Fatalf("expected valid interview, got %v", err)
	}
	s.Coachability = 6
	if _, err := ValidateInterview(s); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for rating 6, got %v", err)
	}
	s.Coachability = 3
	s.GutCheck = "perhaps"
	if _, err := ValidateInterview(s); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for gut check, got %v", err)
	}
}

func TestTokenShapeAndMatch(t *testing.T) {
	tok, err := RandomTokens{}.NewToken()
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	if len(tok) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(tok))
	}
	if !TokenMatches(&tok, tok) || TokenMatches(&tok, tok[:63]+"x") || TokenMatches(nil, tok) {
		t.Fatalf("expected only exact token to match")
	}
}

func TestScoringErrorUnwrapsBoth(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := error(&ScoringError{Stage: StageVideo, Provider: "gemini", Err: cause})
	if !errors.Is(err, ErrScoring) || !errors.Is(err, cause) {
		t.Fatalf("expected ScoringError to match ErrScoring and its cause")
	}
}
