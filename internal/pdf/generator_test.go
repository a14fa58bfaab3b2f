package pdf

import (
	"bytes"
	"testing"
	"time"

	"hiring_pipeline_backend/internal/hiring"
)

func dossierApplicant() hiring.Applicant {
	booking := "https://meet.example.com/abc"
	at := time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC)
	return hiring.Applicant{
		Name:   "Jordan Rivera",
		Email:  "jordan@example.com",
		Source: hiring.SourceReferral,
		Answers: hiring.Answers{
			"Yes.", "Drills and saws.", "A workbench.", "Re-measured.", "Weekdays.", "I like building things.",
		},
		AppScore: &hiring.Score{
			Stage:      hiring.StageApplication,
			Composite:  82,
			Pass:       true,
			Summary:    "Practical and reliable.",
			Dimensions: map[string]int{"skills_fit": 80, "reliability": 90, "custom": 50},
			RedFlags:   []string{"Short tenure at last job"},
		},
		VideoScore: &hiring.Score{
			Stage:     hiring.StageVideo,
			Composite: 78,
			Pass:      true,
			Strengths: []string{"Clear communicator"},
			Concerns:  []string{"Limited electrical experience"},
		},
		BookingURL:  &booking,
		InterviewAt: &at,
		AppliedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestGenerateDossierProducesPDF(t *testing.T) {
	out, err := GenerateDossier(DossierData{
		Applicant:   dossierApplicant(),
		Rubric:      hiring.DefaultRubric(),
		VideoLinks:  []Link{{Label: "Clip 1", URL: "https://media.example.com/1.webm"}},
		CompanyName: "Acme Assembly",
		GeneratedAt: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:min(len(out), 8)])
	}
}

func TestGenerateDossierWithoutScores(t *testing.T) {
	a := dossierApplicant()
	a.AppScore, a.VideoScore, a.InterviewAt = nil, nil, nil
	out, err := GenerateDossier(DossierData{Applicant: a, Rubric: hiring.DefaultRubric()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty document")
	}
}

func TestDimensionLinesFollowRubricOrder(t *testing.T) {
	rubric := hiring.StageRubric{Dimensions: []hiring.Dimension{
		{Key: "reliability", Label: "Reliability", Weight: 15},
		{Key: "skills_fit", Label: "Skills fit", Weight: 30},
	}}
	s := hiring.Score{Dimensions: map[string]int{"skills_fit": 80, "reliability": 90, "zeta": 1, "alpha": 2}}

	lines := dimensionLines(s, rubric)
	got := make([]string, len(lines))
	for i, l := range lines {
		got[i] = l.label
	}
	want := []string{"Reliability", "Skills fit", "alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestJoinPartsSkipsBlanks(t *testing.T) {
	if got := joinParts([]string{"", "a", " ", "b"}, " | "); got != "a | b" {
		t.Fatalf("expected %q, got %q", "a | b", got)
	}
}
