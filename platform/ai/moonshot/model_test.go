package moonshot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestGenerateContentSendsSystemInstructionAndJSONFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	m := NewModel(Config{APIKey: "k", BaseURL: srv.URL})
	req := &model.LLMRequest{
		Contents: []*genai.Content{{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromText("score this"),
				genai.NewPartFromBytes([]byte("%PDF"), "application/pdf"),
			},
		}},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("you are a recruiter", genai.RoleUser),
			ResponseMIMEType:  "application/json",
		},
	}

	var text string
	for resp, err := range m.GenerateContent(context.Background(), req, false) {
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		text = resp.Content.Parts[0].Text
	}
	if text != `{"ok":true}` {
		t.Fatalf("expected JSON content, got %q", text)
	}

	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
	first := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "you are a recruiter" {
		t.Fatalf("expected system message first, got %v", first)
	}
	if rf, _ := got["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", got["response_format"])
	}
}

func TestGenerateContentSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m := NewModel(Config{BaseURL: srv.URL})
	req := &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("hi", genai.RoleUser)}}
	for _, err := range m.GenerateContent(context.Background(), req, false) {
		if err == nil || !strings.Contains(err.Error(), "429") {
			t.Fatalf("expected status 429 error, got %v", err)
		}
	}
}

func TestGenerateContentRejectsTruncatedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"score\":"},"finish_reason":"length"}]}`))
	}))
	defer srv.Close()

	m := NewModel(Config{BaseURL: srv.URL + "/"})
	req := &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("hi", genai.RoleUser)}}
	for _, err := range m.GenerateContent(context.Background(), req, false) {
		if err == nil || !strings.Contains(err.Error(), "truncated") {
			t.Fatalf("expected truncation error, got %v", err)
		}
	}
}

func TestDisableThinkingDropsTemperature(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	temp := float32(0.2)
	m := NewModel(Config{BaseURL: srv.URL, Model: "kimi-k2.5", DisableThinking: true})
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("hi", genai.RoleUser)},
		Config:   &genai.GenerateContentConfig{Temperature: &temp},
	}
	for _, err := range m.GenerateContent(context.Background(), req, false) {
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if _, ok := got["temperature"]; ok {
		t.Fatalf("expected no temperature with thinking disabled, got %v", got["temperature"])
	}
	if th, _ := got["thinking"].(map[string]any); th["type"] != "disabled" {
		t.Fatalf("expected thinking disabled, got %v", got["thinking"])
	}
	if got["model"] != "kimi-k2.5" {
		t.Fatalf("expected configured model, got %v", got["model"])
	}
}
