package hiring

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Stage identifies which scoring step produced a Score.
type Stage string

const (
	StageApplication Stage = "application"
	StageVideo       Stage = "video"
	StageFinal       Stage = "final"
	StageBooking     Stage = "booking"
)

// Score is the canonical, provider-independent result of one scoring step.
type Score struct {
	Stage         Stage          `json:"stage"`
	Dimensions    map[string]int `json:"dimensions"`
	Composite     int            `json:"composite"`
	RedFlags      []string       `json:"redFlags"`
	Strengths     []string       `json:"strengths,omitempty"`
	Concerns      []string       `json:"concerns,omitempty"`
	Pass          bool           `json:"pass"`
	Summary       string         `json:"summary"`
	ResumeSummary string         `json:"resumeSummary,omitempty"`
	Provider      string         `json:"provider,omitempty"`
}

// Dimension is one weighted rubric criterion.
type Dimension struct {
	Key    string `yaml:"key"`
	Label  string `yaml:"label"`
	Weight int    `yaml:"weight"`
}

// StageRubric is the set of dimensions and pass threshold for one stage.
type StageRubric struct {
	Threshold  int         `yaml:"threshold"`
	Dimensions []Dimension `yaml:"dimensions"`
}

// Rubric holds both scored stages.
type Rubric struct {
	Application StageRubric `yaml:"application"`
	Video       StageRubric `yaml:"video"`
}

//go:embed rubric.yaml
var rubricYAML []byte

var defaultRubric = mustLoadRubric(rubricYAML)

// DefaultRubric returns the embedded rubric.
func DefaultRubric() Rubric {
	return defaultRubric
}

// LoadRubric parses and validates a rubric document.
func LoadRubric(data []byte) (Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rubric{}, fmt.Errorf("parse rubric: %w", err)
	}
	if err := r.Application.validate(StageApplication); err != nil {
		return Rubric{}, err
	}
	if err := r.Video.validate(StageVideo); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

func mustLoadRubric(data []byte) Rubric {
	r, err := LoadRubric(data)
	if err != nil {
		panic(err)
	}
	return r
}

func (s StageRubric) validate(stage Stage) error {
	if s.Threshold < 0 || s.Threshold > 100 {
		return fmt.Errorf("rubric %s: threshold %d outside 0-100", stage, s.Threshold)
	}
	if len(s.Dimensions) == 0 {
		return fmt.Errorf("rubric %s: no dimensions", stage)
	}
	seen := make(map[string]bool, len(s.Dimensions))
	total := 0
	for _, d := range s.Dimensions {
		if d.Key == "" {
			return fmt.Errorf("rubric %s: dimension without key", stage)
		}
		if seen[d.Key] {
			return fmt.Errorf("rubric %s: duplicate dimension %q", stage, d.Key)
		}
		if d.Weight <= 0 {
			return fmt.Errorf("rubric %s: dimension %q has non-positive weight", stage, d.Key)
		}
		seen[d.Key] = true
		total += d.Weight
	}
	if total != 100 {
		return fmt.Errorf("rubric %s: weights sum to %d, want 100", stage, total)
	}
	return nil
}

// For returns the rubric of a scored stage.
func (r Rubric) For(stage Stage) (StageRubric, error) {
	switch stage {
	case StageApplication:
		return r.Application, nil
	case StageVideo:
		return r.Video, nil
	}
	return StageRubric{}, fmt.Errorf("no rubric for stage %q", stage)
}

// Keys returns the dimension keys in rubric order.
func (s StageRubric) Keys() []string {
	keys := make([]string, len(s.Dimensions))
	for i, d := range s.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// Composite returns the weighted mean of dims, rounded half away from zero.
// Every rubric dimension must be present in dims.
func (s StageRubric) Composite(dims map[string]int) (int, error) {
	sum := 0
	for _, d := range s.Dimensions {
		v, ok := dims[d.Key]
		if !ok {
			return 0, fmt.Errorf("missing dimension %q", d.Key)
		}
		sum += v * d.Weight
	}
	return int(math.Round(float64(sum) / 100)), nil
}

// Passes applies the stage pass rule: composite at or above threshold and no red flags.
func (s StageRubric) Passes(composite int, redFlags []string) bool {
	return composite >= s.Threshold && len(redFlags) == 0
}
