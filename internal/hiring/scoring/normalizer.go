package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/logger"
	"hiring_pipeline_backend/platform/sanitize"
	"hiring_pipeline_backend/platform/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const rawExcerptRunes = 4000

// ApplicationInput is what the application stage scores.
type ApplicationInput struct {
	ApplicantID uuid.UUID
	Name        string
	Answers     hiring.Answers
	// Resume is an optional PDF. Nil when absent or not downloadable.
	Resume []byte
}

// Clip is one recorded video answer.
type Clip struct {
	MIMEType string
	Data     []byte
}

// VideoInput is what the video stage scores.
type VideoInput struct {
	ApplicantID uuid.UUID
	Name        string
	Clips       []Clip
}

// Options configures a Normalizer.
type Options struct {
	Rubric         hiring.Rubric
	AppTimeout     time.Duration
	VideoTimeout   time.Duration
	MaxClipBytes   int64
	MaxResumeBytes int64
}

// Normalizer validates inputs, calls the stage's provider under a timeout and
// converts the reply into a canonical hiring.Score. Every failure after input
// validation is a *hiring.ScoringError carrying the raw reply.
type Normalizer struct {
	app   Provider
	video Provider
	opts  Options
	log   *logger.Logger
}

// NewNormalizer wires one provider per stage.
func NewNormalizer(app, video Provider, opts Options, log *logger.Logger) *Normalizer {
	if opts.AppTimeout <= 0 {
		opts.AppTimeout = 120 * time.Second
	}
	if opts.VideoTimeout <= 0 {
		opts.VideoTimeout = 300 * time.Second
	}
	if opts.MaxClipBytes <= 0 {
		opts.MaxClipBytes = 100 << 20
	}
	if opts.MaxResumeBytes <= 0 {
		opts.MaxResumeBytes = 10 << 20
	}
	if len(opts.Rubric.Application.Dimensions) == 0 {
		opts.Rubric = hiring.DefaultRubric()
	}
	return &Normalizer{app: app, video: video, opts: opts, log: log}
}

// ScoreApplication scores the six answers and optional résumé.
func (n *Normalizer) ScoreApplication(ctx context.Context, in ApplicationInput) (hiring.Score, error) {
	if err := validateApplication(in, n.opts.MaxResumeBytes); err != nil {
		return hiring.Score{}, err
	}
	return n.score(ctx, hiring.StageApplication, in.ApplicantID, n.app, n.opts.AppTimeout, applicationPrompt(in))
}

// ScoreVideo scores the five recorded answers.
func (n *Normalizer) ScoreVideo(ctx context.Context, in VideoInput) (hiring.Score, error) {
	if err := validateVideo(in, n.opts.MaxClipBytes); err != nil {
		return hiring.Score{}, err
	}
	return n.score(ctx, hiring.StageVideo, in.ApplicantID, n.video, n.opts.VideoTimeout, videoPrompt(in))
}

func (n *Normalizer) score(ctx context.Context, stage hiring.Stage, applicantID uuid.UUID, provider Provider, timeout time.Duration, prompt Prompt) (score hiring.Score, err error) {
	if provider == nil {
		return hiring.Score{}, &hiring.ScoringError{Stage: stage, Provider: "none", Err: errors.New("no provider configured")}
	}
	rubric, err := n.opts.Rubric.For(stage)
	if err != nil {
		return hiring.Score{}, err
	}

	ctx, span := tracing.Start(ctx, "scoring."+string(stage),
		attribute.String("applicant.id", applicantID.String()),
		attribute.String("scoring.provider", provider.Name()),
	)
	defer func() { tracing.End(span, err) }()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	raw, callErr := provider.Generate(callCtx, prompt)
	latency := float64(time.Since(start).Milliseconds())
	n.log.ScoringCall(applicantID.String(), string(stage), provider.Name(), latency, callErr)

	fail := func(cause error) (hiring.Score, error) {
		return hiring.Score{}, &hiring.ScoringError{
			Stage:    stage,
			Provider: provider.Name(),
			Raw:      sanitize.Truncate(raw, rawExcerptRunes),
			Err:      cause,
		}
	}

	if callErr != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return fail(fmt.Errorf("timed out after %s: %w", timeout, callErr))
		}
		return fail(callErr)
	}

	d, err := decodeReply(stage, raw)
	if err != nil {
		return fail(err)
	}
	score, mm, err := toScore(stage, rubric, d)
	if err != nil {
		return fail(err)
	}
	score.Provider = provider.Name()

	if mm != nil {
		n.log.Warn("provider composite disagrees with rubric",
			"applicant_id", applicantID.String(),
			"stage", string(stage),
			"provider_composite", mm.provider,
			"local_composite", mm.local,
		)
	}
	if d.providerPass != nil && *d.providerPass != score.Pass {
		n.log.Info("provider pass flag overridden",
			"applicant_id", applicantID.String(),
			"stage", string(stage),
			"provider_pass", *d.providerPass,
			"pass", score.Pass,
			"red_flags", len(score.RedFlags),
		)
	}
	span.SetAttributes(attribute.Int("scoring.composite", score.Composite), attribute.Bool("scoring.pass", score.Pass))
	return score, nil
}

func validateApplication(in ApplicationInput, maxResume int64) error {
	if strings.TrimSpace(in.Name) == "" {
		return hiring.Invalid("name", "is required")
	}
	if utf8.RuneCountInString(in.Name) > hiring.MaxNameRunes {
		return hiring.Invalid("name", fmt.Sprintf("must be at most %d characters", hiring.MaxNameRunes))
	}
	for i, answer := range in.Answers {
		field := fmt.Sprintf("answers[%d]", i)
		if strings.TrimSpace(answer) == "" {
			return hiring.Invalid(field, "is required")
		}
		if utf8.RuneCountInString(answer) > hiring.MaxAnswerRunes {
			return hiring.Invalid(field, fmt.Sprintf("must be at most %d characters", hiring.MaxAnswerRunes))
		}
	}
	if int64(len(in.Resume)) > maxResume {
		return hiring.Invalid("resume", "exceeds the size limit")
	}
	return nil
}

func validateVideo(in VideoInput, maxClip int64) error {
	if len(in.Clips) != hiring.VideoClipCount {
		return hiring.Invalid("clips", fmt.Sprintf("must contain exactly %d clips", hiring.VideoClipCount))
	}
	for i, clip := range in.Clips {
		field := fmt.Sprintf("clips[%d]", i)
		if len(clip.Data) == 0 {
			return hiring.Invalid(field, "is empty")
		}
		if int64(len(clip.Data)) > maxClip {
			return hiring.Invalid(field, "exceeds the size limit")
		}
		if !strings.HasPrefix(clip.MIMEType, "video/") {
			return hiring.Invalid(field, "is not a video")
		}
	}
	return nil
}
