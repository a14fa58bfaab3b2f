package scoring

import (
	"context"
	"fmt"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/ai/moonshot"
	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/logger"
)

const (
	ProviderGemini   = "gemini"
	ProviderMoonshot = "moonshot"
)

// NewFromConfig builds the normalizer with the providers named in cfg. A
// provider is constructed once even when both stages use it.
func NewFromConfig(ctx context.Context, cfg config.ScoringConfig, rubric hiring.Rubric, log *logger.Logger) (*Normalizer, error) {
	built := make(map[string]Provider, 2)
	provider := func(name string) (Provider, error) {
		if p, ok := built[name]; ok {
			return p, nil
		}
		var p Provider
		switch name {
		case ProviderGemini:
			g, err := NewGeminiProvider(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
			if err != nil {
				return nil, err
			}
			p = g
		case ProviderMoonshot:
			if cfg.GetMoonshotAPIKey() == "" {
				return nil, fmt.Errorf("moonshot: api key is required")
			}
			p = NewAgentProvider(ProviderMoonshot, moonshot.NewModel(moonshot.Config{
				APIKey: cfg.GetMoonshotAPIKey(),
				Model:  cfg.GetMoonshotModel(),
			}))
		default:
			return nil, fmt.Errorf("unknown scoring provider %q", name)
		}
		built[name] = p
		return p, nil
	}

	app, err := provider(cfg.GetAppScoringProvider())
	if err != nil {
		return nil, fmt.Errorf("application scoring provider: %w", err)
	}
	video, err := provider(cfg.GetVideoScoringProvider())
	if err != nil {
		return nil, fmt.Errorf("video scoring provider: %w", err)
	}

	log.Info("scoring providers configured", "application", app.Name(), "video", video.Name())
	return NewNormalizer(app, video, Options{
		Rubric:         rubric,
		AppTimeout:     cfg.GetAppScoringTimeout(),
		VideoTimeout:   cfg.GetVideoScoringTimeout(),
		MaxClipBytes:   cfg.GetMediaMaxBytes(),
		MaxResumeBytes: cfg.GetResumeMaxBytes(),
	}), nil
}
