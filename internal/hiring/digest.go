package hiring

import "time"

// Digest is the weekly pipeline summary sent to founders.
type Digest struct {
	Since            time.Time      `json:"since"`
	GeneratedAt      time.Time      `json:"generatedAt"`
	ByStatus         map[Status]int `json:"byStatus"`
	NewApplications  int            `json:"newApplications"`
	HiredInWindow    int            `json:"hiredInWindow"`
	RejectedInWindow int            `json:"rejectedInWindow"`
	Total            int            `json:"total"`
}

// DigestWindow is how far back the weekly digest looks.
const DigestWindow = 7 * 24 * time.Hour

// NewDigest returns a digest with every status present at zero.
func NewDigest(now time.Time) Digest {
	d := Digest{
		Since:       now.Add(-DigestWindow),
		GeneratedAt: now,
		ByStatus:    make(map[Status]int, len(AllStatuses)),
	}
	for _, s := range AllStatuses {
		d.ByStatus[s] = 0
	}
	return d
}
