package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const agentAppName = "hiring_scoring"

// AgentProvider runs prompts through an ADK llmagent backed by any
// model.LLM. It is text-only: blob parts are replaced with a note.
type AgentProvider struct {
	name     string
	llm      model.LLM
	sessions session.Service

	mu      sync.Mutex
	runners map[string]*runner.Runner
}

// NewAgentProvider wraps llm. name is reported in logs and score records.
func NewAgentProvider(name string, llm model.LLM) *AgentProvider {
	return &AgentProvider{
		name:     name,
		llm:      llm,
		sessions: session.InMemoryService(),
		runners:  make(map[string]*runner.Runner),
	}
}

func (p *AgentProvider) Name() string { return p.name }

// Generate runs one single-turn session and returns the concatenated reply text.
func (p *AgentProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	r, err := p.runnerFor(prompt.System)
	if err != nil {
		return "", err
	}

	userID := "scoring"
	sessionID := uuid.NewString()
	if _, err := p.sessions.Create(ctx, &session.CreateRequest{
		AppName:   agentAppName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return "", fmt.Errorf("%s: create session: %w", p.name, err)
	}
	defer func() {
		_ = p.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   agentAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	content := &genai.Content{Role: genai.RoleUser, Parts: textOnlyParts(prompt.Parts)}
	var out strings.Builder
	for event, err := range r.Run(ctx, userID, sessionID, content, agent.RunConfig{StreamingMode: agent.StreamingModeNone}) {
		if err != nil {
			return "", fmt.Errorf("%s: run: %w", p.name, err)
		}
		if event == nil || event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part != nil {
				out.WriteString(part.Text)
			}
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", errors.New(p.name + ": empty response")
	}
	return out.String(), nil
}

// runnerFor returns a runner whose agent carries system as its instruction.
// Runners are cached per distinct instruction.
func (p *AgentProvider) runnerFor(system string) (*runner.Runner, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.runners[system]; ok {
		return r, nil
	}

	temperature := float32(0.2)
	a, err := llmagent.New(llmagent.Config{
		Name:        "ApplicantScorer",
		Model:       p.llm,
		Description: "Scores applicant material against a weighted rubric and replies with JSON.",
		Instruction: system,
		GenerateContentConfig: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create agent: %w", p.name, err)
	}

	r, err := runner.New(runner.Config{
		AppName:        agentAppName,
		Agent:          a,
		SessionService: p.sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create runner: %w", p.name, err)
	}
	p.runners[system] = r
	return r, nil
}

func textOnlyParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.IsBlob() {
			label := part.Label
			if label == "" {
				label = part.MIMEType
			}
			out = append(out, genai.NewPartFromText("["+label+" not available to this evaluator; score from the text only]"))
			continue
		}
		if part.Text != "" {
			out = append(out, genai.NewPartFromText(part.Text))
		}
	}
	return out
}
