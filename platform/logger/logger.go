// Package logger wraps slog with the event helpers the services share.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

// Keys under which middleware stores request-scoped log fields.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
)

type Logger struct {
	*slog.Logger
}

// New logs JSON at info level, or text at debug level in development.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// Nop discards everything. Used by tests.
func Nop() *Logger {
	return NewWithWriter("test", io.Discard)
}

func (l *Logger) with(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{l.Logger.With(args...)}
}

// WithContext adds request_id and user_id set by the HTTP middleware, and
// trace_id when ctx carries a sampled span.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	var args []any
	for _, key := range []contextKey{RequestIDKey, UserIDKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			args = append(args, slog.String(string(key), v))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		args = append(args, slog.String("trace_id", sc.TraceID().String()))
	}
	return l.with(args...)
}

// WithApplicant scopes every record to one applicant.
func (l *Logger) WithApplicant(applicantID string) *Logger {
	return l.with(slog.String("applicant_id", applicantID))
}

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// Transition records a committed status change.
func (l *Logger) Transition(applicantID, from, to string) {
	l.Info("applicant_transition",
		slog.String("applicant_id", applicantID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// ScoringCall records one provider call. Failures log at warn.
func (l *Logger) ScoringCall(applicantID, stage, provider string, latencyMs float64, err error) {
	attrs := []any{
		slog.String("applicant_id", applicantID),
		slog.String("stage", stage),
		slog.String("provider", provider),
		slog.Float64("latency_ms", latencyMs),
	}
	if err != nil {
		l.Warn("scoring_call", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	l.Info("scoring_call", attrs...)
}

func (l *Logger) WebhookRejected(source, reason, clientIP string) {
	l.Warn("webhook_rejected",
		slog.String("source", source),
		slog.String("reason", reason),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded", slog.String("client_ip", clientIP), slog.String("path", path))
}
