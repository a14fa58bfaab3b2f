// Package moonshot serves the Moonshot (Kimi) chat completions API as an ADK
// model.LLM, so scoring can switch providers without touching agent code.
package moonshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const (
	defaultBaseURL = "https://api.moonshot.ai/v1"
	defaultModel   = "kimi-k2-turbo-preview"
	maxErrorBody   = 2048
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// DisableThinking turns off thinking mode on kimi-k2.5, which then runs
	// at a fixed temperature of 0.6.
	DisableThinking bool
	HTTPClient      *http.Client
}

type KimiModel struct {
	cfg    Config
	client *http.Client
}

func NewModel(cfg Config) *KimiModel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &KimiModel{cfg: cfg, client: client}
}

func (m *KimiModel) Name() string { return m.cfg.Model }

// GenerateContent always makes a single non-streaming call and yields once.
func (m *KimiModel) GenerateContent(ctx context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(m.complete(ctx, req))
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type typed struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string    `json:"model"`
	Messages       []message `json:"messages"`
	Temperature    *float32  `json:"temperature,omitempty"`
	Thinking       *typed    `json:"thinking,omitempty"`
	ResponseFormat *typed    `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (m *KimiModel) buildRequest(req *model.LLMRequest) (completionRequest, error) {
	out := completionRequest{Model: m.cfg.Model}
	if sys := joinText(systemParts(req.Config)); sys != "" {
		out.Messages = append(out.Messages, message{Role: "system", Content: sys})
	}
	for _, c := range req.Contents {
		if c == nil {
			continue
		}
		// Inline data such as PDFs cannot be sent; the caller extracts text first.
		if text := joinText(c.Parts); text != "" {
			out.Messages = append(out.Messages, message{Role: chatRole(c.Role), Content: text})
		}
	}
	if len(out.Messages) == 0 {
		return out, errors.New("kimi: request has no text content")
	}

	if cfg := req.Config; cfg != nil {
		if cfg.Temperature != nil && !m.cfg.DisableThinking {
			out.Temperature = cfg.Temperature
		}
		if cfg.ResponseMIMEType == "application/json" {
			out.ResponseFormat = &typed{Type: "json_object"}
		}
	}
	if m.cfg.DisableThinking {
		out.Thinking = &typed{Type: "disabled"}
	}
	return out, nil
}

func (m *KimiModel) complete(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	if req == nil {
		return nil, errors.New("kimi: nil request")
	}
	payload, err := m.buildRequest(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("kimi: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("kimi: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("kimi: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("kimi: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("kimi: decode response: %w", err)
	}
	switch {
	case out.Error != nil:
		return nil, fmt.Errorf("kimi: %s", out.Error.Message)
	case len(out.Choices) == 0:
		return nil, errors.New("kimi: response has no choices")
	case out.Choices[0].FinishReason == "length":
		return nil, errors.New("kimi: response truncated at max tokens")
	}

	return &model.LLMResponse{
		Content: genai.NewContentFromText(out.Choices[0].Message.Content, genai.RoleModel),
	}, nil
}

func systemParts(cfg *genai.GenerateContentConfig) []*genai.Part {
	if cfg == nil || cfg.SystemInstruction == nil {
		return nil
	}
	return cfg.SystemInstruction.Parts
}

// joinText concatenates the non-blank text parts with newlines.
func joinText(parts []*genai.Part) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == nil || p.InlineData != nil || strings.TrimSpace(p.Text) == "" {
			continue
		}
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

func chatRole(role string) string {
	if role == genai.RoleModel {
		return "assistant"
	}
	return "user"
}

var _ model.LLM = (*KimiModel)(nil)
