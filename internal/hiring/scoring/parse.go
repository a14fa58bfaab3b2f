package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"hiring_pipeline_backend/internal/hiring"
)

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Dimension fields are pointers so that an omitted key fails decoding
// rather than reading as zero.

type applicationWire struct {
	SkillsFit         *int     `json:"skills_fit"`
	Reliability       *int     `json:"reliability"`
	Conscientiousness *int     `json:"conscientiousness"`
	ProblemSolving    *int     `json:"problem_solving"`
	Composite         *float64 `json:"composite_score"`
	RedFlags          []string `json:"red_flags"`
	Pass              *bool    `json:"pass"`
	Summary           *string  `json:"summary"`
	ResumeSummary     *string  `json:"resume_summary"`
}

func (w applicationWire) dimensions() map[string]*int {
	return map[string]*int{
		"skills_fit":        w.SkillsFit,
		"reliability":       w.Reliability,
		"conscientiousness": w.Conscientiousness,
		"problem_solving":   w.ProblemSolving,
	}
}

type videoWire struct {
	Communication                *int     `json:"communication"`
	MechanicalAptitude           *int     `json:"mechanical_aptitude"`
	ProblemSolvingHonesty        *int     `json:"problem_solving_honesty"`
	ReliabilityConscientiousness *int     `json:"reliability_conscientiousness"`
	StartupFit                   *int     `json:"startup_fit"`
	Composite                    *float64 `json:"composite_score"`
	RedFlags                     []string `json:"red_flags"`
	Strengths                    []string `json:"strengths"`
	Concerns                     []string `json:"concerns"`
	Pass                         *bool    `json:"pass"`
	Summary                      *string  `json:"summary"`
}

func (w videoWire) dimensions() map[string]*int {
	return map[string]*int{
		"communication":                 w.Communication,
		"mechanical_aptitude":           w.MechanicalAptitude,
		"problem_solving_honesty":       w.ProblemSolvingHonesty,
		"reliability_conscientiousness": w.ReliabilityConscientiousness,
		"startup_fit":                   w.StartupFit,
	}
}

// decoded is the stage-independent view of a wire reply.
type decoded struct {
	dims              map[string]*int
	providerComposite *float64
	providerPass      *bool
	redFlags          []string
	strengths         []string
	concerns          []string
	summary           *string
	resumeSummary     *string
}

func decodeStrict(body string, dst any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if dec.More() {
		return errors.New("decode reply: trailing data after JSON object")
	}
	return nil
}

func decodeReply(stage hiring.Stage, raw string) (decoded, error) {
	body := stripFences(raw)
	if body == "" {
		return decoded{}, errors.New("empty reply")
	}

	switch stage {
	case hiring.StageApplication:
		var w applicationWire
		if err := decodeStrict(body, &w); err != nil {
			return decoded{}, err
		}
		return decoded{
			dims:              w.dimensions(),
			providerComposite: w.Composite,
			providerPass:      w.Pass,
			redFlags:          w.RedFlags,
			summary:           w.Summary,
			resumeSummary:     w.ResumeSummary,
		}, nil
	case hiring.StageVideo:
		var w videoWire
		if err := decodeStrict(body, &w); err != nil {
			return decoded{}, err
		}
		return decoded{
			dims:              w.dimensions(),
			providerComposite: w.Composite,
			providerPass:      w.Pass,
			redFlags:          w.RedFlags,
			strengths:         w.Strengths,
			concerns:          w.Concerns,
			summary:           w.Summary,
		}, nil
	}
	return decoded{}, fmt.Errorf("unsupported stage %q", stage)
}

// mismatch describes a provider composite that disagrees with the local one.
type mismatch struct {
	provider float64
	local    int
}

// CompositeTolerance is how far a provider's composite may drift from the
// locally computed weighted mean before it is logged.
const CompositeTolerance = 5.0

// toScore validates a decoded reply against the stage rubric and builds the
// canonical score. The composite and pass flag are always computed locally.
func toScore(stage hiring.Stage, rubric hiring.StageRubric, d decoded) (hiring.Score, *mismatch, error) {
	dims := make(map[string]int, len(rubric.Dimensions))
	for _, key := range rubric.Keys() {
		v, ok := d.dims[key]
		if !ok || v == nil {
			return hiring.Score{}, nil, fmt.Errorf("missing dimension %q", key)
		}
		if *v < 0 || *v > 100 {
			return hiring.Score{}, nil, fmt.Errorf("dimension %q out of range: %d", key, *v)
		}
		dims[key] = *v
	}
	if d.summary == nil || strings.TrimSpace(*d.summary) == "" {
		return hiring.Score{}, nil, errors.New("missing summary")
	}

	composite, err := rubric.Composite(dims)
	if err != nil {
		return hiring.Score{}, nil, err
	}

	var mm *mismatch
	if d.providerComposite != nil && math.Abs(*d.providerComposite-float64(composite)) > CompositeTolerance {
		mm = &mismatch{provider: *d.providerComposite, local: composite}
	}

	redFlags := nonEmpty(d.redFlags)
	score := hiring.Score{
		Stage:      stage,
		Dimensions: dims,
		Composite:  composite,
		RedFlags:   redFlags,
		Strengths:  nonEmpty(d.strengths),
		Concerns:   nonEmpty(d.concerns),
		Pass:       rubric.Passes(composite, redFlags),
		Summary:    strings.TrimSpace(*d.summary),
	}
	if d.resumeSummary != nil {
		score.ResumeSummary = strings.TrimSpace(*d.resumeSummary)
	}
	return score, mm, nil
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
