// Package hiring holds the core rules of the applicant pipeline: the status
// state machine, the canonical score shape, the decision engine and the
// domain error taxonomy. It performs no I/O.
package hiring

// Status is the pipeline position of one applicant.
type Status string

const (
	StatusPendingAI       Status = "pending_ai"
	StatusVideoInvited    Status = "video_invited"
	StatusVideoScoring    Status = "video_scoring"
	StatusZoomInvited     Status = "zoom_invited"
	StatusZoomScheduled   Status = "zoom_scheduled"
	StatusPendingDecision Status = "pending_decision"
	StatusHired           Status = "hired"
	StatusRejected        Status = "rejected"
	StatusReviewNeeded    Status = "review_needed"
)

// AllStatuses lists every status in pipeline order.
var AllStatuses = []Status{
	StatusPendingAI,
	StatusVideoInvited,
	StatusVideoScoring,
	StatusZoomInvited,
	StatusZoomScheduled,
	StatusPendingDecision,
	StatusReviewNeeded,
	StatusHired,
	StatusRejected,
}

var transitions = map[Status][]Status{
	StatusPendingAI:       {StatusVideoInvited, StatusRejected},
	StatusVideoInvited:    {StatusVideoScoring},
	StatusVideoScoring:    {StatusZoomInvited, StatusRejected},
	StatusZoomInvited:     {StatusZoomScheduled},
	StatusZoomScheduled:   {StatusPendingDecision},
	StatusPendingDecision: {StatusHired, StatusRejected, StatusReviewNeeded},
	StatusReviewNeeded:    {StatusHired, StatusRejected},
}

// rank orders statuses so that every legal transition strictly increases it.
// The three outcomes share the top ranks; review_needed sits below the two
// terminal states because founders may still resolve it.
var rank = map[Status]int{
	StatusPendingAI:       0,
	StatusVideoInvited:    1,
	StatusVideoScoring:    2,
	StatusZoomInvited:     3,
	StatusZoomScheduled:   4,
	StatusPendingDecision: 5,
	StatusReviewNeeded:    6,
	StatusHired:           7,
	StatusRejected:        7,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok
}

// Rank returns the monotonic pipeline order of s, or -1 when unknown.
func Rank(s Status) int {
	r, ok := rank[s]
	if !ok {
		return -1
	}
	return r
}

// CanTransition reports whether from → to is a legal pipeline move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s accepts no further transitions.
func IsTerminal(s Status) bool {
	return s == StatusHired || s == StatusRejected
}

// IsAutomatedTerminal reports whether the unattended pipeline stops at s.
// review_needed waits on a founder.
func IsAutomatedTerminal(s Status) bool {
	return IsTerminal(s) || s == StatusReviewNeeded
}

// PastStage reports whether s is strictly after stage in the pipeline.
func PastStage(s, stage Status) bool {
	return Rank(s) > Rank(stage)
}
