package hiring

import "fmt"

const (
	// HireThreshold is the lowest final composite that hires outright.
	HireThreshold = 75
	// ReviewThreshold is the lowest final composite routed to founder review.
	ReviewThreshold = 60

	appWeight   = 20
	videoWeight = 30
	zoomWeight  = 50
)

// DecisionInput is everything the Decision Engine reads.
type DecisionInput struct {
	AppComposite   *int
	VideoComposite *int
	Interview      InterviewScores
}

// DecisionResult is the engine's output. Point contributions are in tenths
// of a point so the founder summary shows exactly what was summed.
type DecisionResult struct {
	FinalComposite   int
	Decision         Decision
	ZoomAverageTenth int
	AppPointsTenth   int
	VideoPointsTenth int
	ZoomPointsTenth  int
	GutOverride      bool
}

// ZoomAverage returns the mean interview rating, one decimal.
func (r DecisionResult) ZoomAverage() string { return tenths(r.ZoomAverageTenth) }

// AppPoints returns the application contribution, one decimal.
func (r DecisionResult) AppPoints() string { return tenths(r.AppPointsTenth) }

// VideoPoints returns the video contribution, one decimal.
func (r DecisionResult) VideoPoints() string { return tenths(r.VideoPointsTenth) }

// ZoomPoints returns the interview contribution, one decimal.
func (r DecisionResult) ZoomPoints() string { return tenths(r.ZoomPointsTenth) }

// Decide computes the final composite and decision. It is a pure function.
//
// Each contribution is rounded to one decimal before summing and the sum is
// rounded half away from zero, so [5,5,4,5,4,5] with app 82 and video 78
// gives 16.4 + 23.4 + 46.7 = 86.5 → 87. All arithmetic is on integers.
//
// Rounding the contributions first can move a total across a threshold: app
// 82, video 38 and the same ratings sum to 74.5 and hire, where the unrounded
// 74.47 would round to 74 and go to review.
func Decide(in DecisionInput) DecisionResult {
	ratings := in.Interview.Ratings()
	sum := 0
	for _, r := range ratings {
		sum += r
	}

	var res DecisionResult
	// app/100 * 20 in tenths is app*2; video/100 * 30 in tenths is video*3.
	if in.AppComposite != nil {
		res.AppPointsTenth = *in.AppComposite * appWeight / 10
	}
	if in.VideoComposite != nil {
		res.VideoPointsTenth = *in.VideoComposite * videoWeight / 10
	}
	// (sum/6)/5 * 50 in tenths is sum*100/6.
	res.ZoomPointsTenth = divRound(sum*zoomWeight*10, len(ratings)*5)
	res.ZoomAverageTenth = divRound(sum*10, len(ratings))

	total := res.AppPointsTenth + res.VideoPointsTenth + res.ZoomPointsTenth
	res.FinalComposite = clamp(divRound(total, 10), 0, 100)
	res.Decision = Classify(res.FinalComposite, in.Interview.GutCheck)
	res.GutOverride = in.Interview.GutCheck == GutNo
	return res
}

// Classify maps a final composite and gut check to a decision. A "no" gut
// check always routes to review, regardless of the composite.
func Classify(finalComposite int, gut GutCheck) Decision {
	switch {
	case gut == GutNo:
		return DecisionReview
	case finalComposite >= HireThreshold:
		return DecisionHire
	case finalComposite >= ReviewThreshold:
		return DecisionReview
	default:
		return DecisionReject
	}
}

// StatusFor returns the pipeline status a decision lands in.
func StatusFor(d Decision) Status {
	switch d {
	case DecisionHire:
		return StatusHired
	case DecisionReject:
		return StatusRejected
	default:
		return StatusReviewNeeded
	}
}

// divRound divides n by a positive d, rounding half away from zero.
func divRound(n, d int) int {
	if d == 0 {
		return 0
	}
	if n < 0 {
		return -((-n*2 + d) / (2 * d))
	}
	return (n*2 + d) / (2 * d)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func tenths(v int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%d", sign, v/10, v%10)
}
