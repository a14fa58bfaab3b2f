package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templateMu    sync.Mutex
	templateCache = map[string]*template.Template{}
)

// Base carries the fields every template layout uses.
type Base struct {
	Title       string
	Heading     string
	Subheading  string
	CTALabel    string
	CTAURL      string
	CompanyName string
}

// CandidateData renders the candidate-facing templates.
type CandidateData struct {
	Base
	FirstName string
	Stage     string
	HasQRCode bool
}

// ScoreBlock is one scored stage in a founder email.
type ScoreBlock struct {
	Label      string
	Composite  int
	Pass       bool
	Summary    string
	Strengths  []string
	Concerns   []string
	RedFlags   []string
	Dimensions []DimensionLine
}

// DimensionLine is one rubric dimension with its score.
type DimensionLine struct {
	Label string
	Score int
}

// Link is a labelled URL.
type Link struct {
	Label string
	URL   string
}

// QA is one application question with the applicant's answer.
type QA struct {
	Question string
	Answer   string
}

// FounderData renders the founder-facing templates.
type FounderData struct {
	Base
	ApplicantID   string
	Name          string
	Email         string
	Phone         string
	Source        string
	Stage         string
	Outcome       string
	Start         string
	Scores        []ScoreBlock
	Answers       []QA
	VideoLinks    []Link
	ResumeSummary string
	Final         string
	Decision      string
	AppPoints     string
	VideoPoints   string
	ZoomPoints    string
	ZoomAverage   string
	GutOverride   bool
	InterviewNote string
}

// EscalationData renders the operator alert.
type EscalationData struct {
	Base
	ApplicantID string
	Name        string
	Stage       string
	Message     string
	Provider    string
}

// StatusCount is one row of the digest table.
type StatusCount struct {
	Status string
	Count  int
}

// DigestData renders the weekly digest.
type DigestData struct {
	Base
	Since            string
	ByStatus         []StatusCount
	NewApplications  int
	HiredInWindow    int
	RejectedInWindow int
	Total            int
}

// Render executes templates/<name> inside the shared layout.
func Render(name string, data any) (string, error) {
	tmpl, err := parsed(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func parsed(name string) (*template.Template, error) {
	templateMu.Lock()
	defer templateMu.Unlock()
	if t, ok := templateCache[name]; ok {
		return t, nil
	}
	t, err := template.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse email template %s: %w", name, err)
	}
	templateCache[name] = t
	return t, nil
}
