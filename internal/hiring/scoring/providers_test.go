package scoring

import (
	"context"
	"strings"
	"testing"
	"time"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/logger"
)

type scoringConfig struct {
	app, video  string
	moonshotKey string
}

func (c scoringConfig) GetGeminiAPIKey() string                { return "" }
func (c scoringConfig) GetGeminiModel() string                 { return "" }
func (c scoringConfig) GetMoonshotAPIKey() string              { return c.moonshotKey }
func (c scoringConfig) GetMoonshotModel() string               { return "" }
func (c scoringConfig) GetAppScoringProvider() string          { return c.app }
func (c scoringConfig) GetVideoScoringProvider() string        { return c.video }
func (c scoringConfig) GetAppScoringTimeout() time.Duration    { return 30 * time.Second }
func (c scoringConfig) GetVideoScoringTimeout() time.Duration  { return time.Minute }
func (c scoringConfig) GetMediaMaxBytes() int64                { return 1 << 20 }
func (c scoringConfig) GetResumeMaxBytes() int64               { return 1 << 10 }
func (c scoringConfig) GetMediaDownloadTimeout() time.Duration { return time.Minute }

func TestNewFromConfigSharesProvider(t *testing.T) {
	n, err := NewFromConfig(context.Background(), scoringConfig{app: ProviderMoonshot, video: ProviderMoonshot, moonshotKey: "k"}, hiring.DefaultRubric(), logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.app != n.video {
		t.Fatalf("expected one provider instance for both stages")
	}
	if n.opts.MaxClipBytes != 1<<20 || n.opts.MaxResumeBytes != 1<<10 {
		t.Fatalf("expected size ceilings from config, got %d/%d", n.opts.MaxClipBytes, n.opts.MaxResumeBytes)
	}
	if n.opts.AppTimeout != 30*time.Second {
		t.Fatalf("expected app timeout from config, got %s", n.opts.AppTimeout)
	}
}

func TestNewFromConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  scoringConfig
		want string
	}{
		{"unknown provider", scoringConfig{app: "openai", video: ProviderGemini}, "unknown scoring provider"},
		{"moonshot without key", scoringConfig{app: ProviderMoonshot, video: ProviderMoonshot}, "api key is required"},
		{"gemini without key", scoringConfig{app: ProviderGemini, video: ProviderGemini}, "api key is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFromConfig(context.Background(), tc.cfg, hiring.DefaultRubric(), logger.Nop())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
