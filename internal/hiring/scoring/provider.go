// Package scoring turns applicant material into canonical hiring.Score values
// by prompting a configured AI provider and validating its JSON reply.
package scoring

import "context"

// Part is one ordered piece of a prompt: either text or an inline blob.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
	// Label describes a blob for providers that cannot read it.
	Label string
}

// IsBlob reports whether the part carries binary data.
func (p Part) IsBlob() bool { return len(p.Data) > 0 }

// Prompt is a provider-neutral request: a system instruction and ordered parts.
type Prompt struct {
	System string
	Parts  []Part
}

// TextPart builds a text part.
func TextPart(text string) Part { return Part{Text: text} }

// BlobPart builds an inline binary part.
func BlobPart(mimeType string, data []byte, label string) Part {
	return Part{MIMEType: mimeType, Data: data, Label: label}
}

// Provider sends a prompt to one AI vendor and returns its raw text reply.
// Implementations must honour ctx cancellation.
type Provider interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}
