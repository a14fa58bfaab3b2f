package hiring

import "testing"

func intPtr(v int) *int { return &v }

func interview(ratings [6]int, gut GutCheck) InterviewScores {
	return InterviewScores{
		Dependability:       ratings[0],
		ProblemSolving:      ratings[1],
		CustomerInteraction: ratings[2],
		PracticalSkills:     ratings[3],
		Coachability:        ratings[4],
		GrowthMindset:       ratings[5],
		GutCheck:            gut,
	}
}

func TestDecideWorkedExampleHires(t *testing.T) {
	res := Decide(DecisionInput{
		AppComposite:   intPtr(82),
		VideoComposite: intPtr(78),
		Interview:      interview([6]int{5, 5, 4, 5, 4, 5}, GutYes),
	})
	if res.FinalComposite != 87 {
		t.Fatalf("expected final composite 87, got %d", res.FinalComposite)
	}
	if res.Decision != DecisionHire {
		t.Fatalf("expected hire, got %s", res.Decision)
	}
	if res.AppPoints() != "16.4" || res.VideoPoints() != "23.4" || res.ZoomPoints() != "46.7" {
		t.Fatalf("expected 16.4/23.4/46.7, got %s/%s/%s", res.AppPoints(), res.VideoPoints(), res.ZoomPoints())
	}
	if res.ZoomAverage() != "4.7" {
		t.Fatalf("expected zoom average 4.7, got %s", res.ZoomAverage())
	}
}

func TestDecideRoundsContributionsBeforeThreshold(t *testing.T) {
	res := Decide(DecisionInput{
		AppComposite:   intPtr(82),
		VideoComposite: intPtr(38),
		Interview:      interview([6]int{5, 5, 4, 5, 4, 5}, GutYes),
	})
	if res.AppPoints() != "16.4" || res.VideoPoints() != "11.4" || res.ZoomPoints() != "46.7" {
		t.Fatalf("expected 16.4/11.4/46.7, got %s/%s/%s", res.AppPoints(), res.VideoPoints(), res.ZoomPoints())
	}
	if res.FinalComposite != HireThreshold {
		t.Fatalf("expected 74.5 to round up to %d, got %d", HireThreshold, res.FinalComposite)
	}
	if res.Decision != DecisionHire {
		t.Fatalf("expected hire at the threshold, got %s", res.Decision)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	in := DecisionInput{
		AppComposite:   intPtr(71),
		VideoComposite: intPtr(66),
		Interview:      interview([6]int{3, 4, 3, 2, 5, 4}, GutMaybe),
	}
	first := Decide(in)
	for i := 0; i < 100; i++ {
		if got := Decide(in); got != first {
			t.Fatalf("expected identical results, got %+v then %+v", first, got)
		}
	}
}

func TestDecideGutNoForcesReviewAtPerfectScore(t *testing.T) {
	res := Decide(DecisionInput{
		AppComposite:   intPtr(100),
		VideoComposite: intPtr(100),
		Interview:      interview([6]int{5, 5, 5, 5, 5, 5}, GutNo),
	})
	if res.FinalComposite != 100 {
		t.Fatalf("expected composite 100, got %d", res.FinalComposite)
	}
	if res.Decision != DecisionReview || !res.GutOverride {
		t.Fatalf("expected gut override to review, got %s", res.Decision)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		composite int
		want      Decision
	}{
		{75, DecisionHire},
		{74, DecisionReview},
		{60, DecisionReview},
		{59, DecisionReject},
		{100, DecisionHire},
		{0, DecisionReject},
	}
	for _, tc := range cases {
		if got := Classify(tc.composite, GutYes); got != tc.want {
			t.Fatalf("expected %s at %d, got %s", tc.want, tc.composite, got)
		}
	}
}

func TestDecideMissingStageScoresContributeZero(t *testing.T) {
	res := Decide(DecisionInput{Interview: interview([6]int{5, 5, 5, 5, 5, 5}, GutYes)})
	if res.FinalComposite != 50 {
		t.Fatalf("expected 50 from interview alone, got %d", res.FinalComposite)
	}
	if res.Decision != DecisionReject {
		t.Fatalf("expected reject, got %s", res.Decision)
	}
}

func TestStatusForDecision(t *testing.T) {
	if StatusFor(DecisionHire) != StatusHired || StatusFor(DecisionReject) != StatusRejected || StatusFor(DecisionReview) != StatusReviewNeeded {
		t.Fatalf("expected hire/reject/review to map to hired/rejected/review_needed")
	}
}
