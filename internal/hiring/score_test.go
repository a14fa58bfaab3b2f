package hiring

import (
	"strings"
	"testing"
)

func TestDefaultRubricMatchesStageWeights(t *testing.T) {
	r := DefaultRubric()
	if r.Application.Threshold != 60 || r.Video.Threshold != 65 {
		t.Fatalf("expected thresholds 60/65, got %d/%d", r.Application.Threshold, r.Video.Threshold)
	}
	want := map[string]int{"skills_fit": 30, "reliability": 15, "conscientiousness": 25, "problem_solving": 30}
	for _, d := range r.Application.Dimensions {
		if want[d.Key] != d.Weight {
			t.Fatalf("expected %s weight %d, got %d", d.Key, want[d.Key], d.Weight)
		}
	}
	if len(r.Video.Dimensions) != 5 {
		t.Fatalf("expected 5 video dimensions, got %d", len(r.Video.Dimensions))
	}
}

func TestCompositeWeightedMean(t *testing.T) {
	app := DefaultRubric().Application
	got, err := app.Composite(map[string]int{"skills_fit": 90, "reliability": 85, "conscientiousness": 80, "problem_solving": 70})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// 27 + 12.75 + 20 + 21 = 80.75
	if got != 81 {
		t.Fatalf("expected 81, got %d", got)
	}
	if _, err := app.Composite(map[string]int{"skills_fit": 90}); err == nil {
		t.Fatalf("expected missing dimension error")
	}
}

func TestPassesRequiresNoRedFlags(t *testing.T) {
	app := DefaultRubric().Application
	if !app.Passes(60, nil) {
		t.Fatalf("expected 60 with no flags to pass")
	}
	if app.Passes(95, []string{"No reliable transportation"}) {
		t.Fatalf("expected red flag to fail")
	}
	if app.Passes(59, nil) {
		t.Fatalf("expected 59 to fail")
	}
}

func TestLoadRubricRejectsBadWeights(t *testing.T) {
	doc := `
application:
  threshold: 60
  dimensions:
    - {key: a, weight: 50}
    - {key: b, weight: 40}
video:
  threshold: 65
  dimensions:
    - {key: c, weight: 100}
`
	_, err := LoadRubric([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "sum to 90") {
		t.Fatalf("expected weight sum error, got %v", err)
	}
}
