// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Consumer-specific config interfaces
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides the Redis/asynq settings shared by the API
// (enqueue side) and the scheduler (worker side).
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetDigestCron() string
	GetDigestTimezone() string
	GetOutboxRetention() time.Duration
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailProvider() string
	GetBrevoAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// WhatsAppConfig provides settings for the GOWA WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketResumes() string
	GetMinioBucketVideos() string
	IsMinIOEnabled() bool
}

// ScoringConfig provides AI provider settings for the score normalizer.
type ScoringConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetMoonshotAPIKey() string
	GetMoonshotModel() string
	GetAppScoringProvider() string
	GetVideoScoringProvider() string
	GetAppScoringTimeout() time.Duration
	GetVideoScoringTimeout() time.Duration
	GetMediaMaxBytes() int64
	GetResumeMaxBytes() int64
	GetMediaDownloadTimeout() time.Duration
}

// HiringConfig provides pipeline links and operator settings.
type HiringConfig interface {
	GetFounderEmails() []string
	GetOperatorEmails() []string
	GetVideoAppURL() string
	GetCalLink() string
	GetDossierLinkTTL() time.Duration
	GetCompanyName() string
}

// WebhookConfig provides booking webhook verification settings.
type WebhookConfig interface {
	GetCalWebhookSecret() string
	GetCalWebhookAllowUnsigned() bool
}

// TracingConfig provides OpenTelemetry settings.
type TracingConfig interface {
	GetOTelEnabled() bool
	GetOTelEndpoint() string
	GetOTelInsecure() bool
	GetOTelSampleRatio() float64
	GetServiceName() string
	GetEnv() string
}

// Config holds every setting read from the environment.
type Config struct {
	Env             string
	ServiceName     string
	HTTPAddr        string
	DatabaseURL     string
	JWTAccessSecret string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
	DigestCron       string
	DigestTimezone   string
	OutboxRetention  time.Duration

	EmailEnabled     bool
	EmailProvider    string
	BrevoAPIKey      string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	WhatsAppURL      string
	WhatsAppKey      string
	WhatsAppDeviceID string

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOMaxFileSize   int64
	MinioBucketResumes string
	MinioBucketVideos  string

	GeminiAPIKey         string
	GeminiModel          string
	MoonshotAPIKey       string
	MoonshotModel        string
	AppScoringProvider   string
	VideoScoringProvider string
	AppScoringTimeout    time.Duration
	VideoScoringTimeout  time.Duration
	MediaMaxBytes        int64
	ResumeMaxBytes       int64
	MediaDownloadTimeout time.Duration

	FounderEmails  []string
	OperatorEmails []string
	VideoAppURL    string
	CalLink        string
	DossierLinkTTL time.Duration
	CompanyName    string

	CalWebhookSecret        string
	CalWebhookAllowUnsigned bool

	OTelEnabled     bool
	OTelEndpoint    string
	OTelInsecure    bool
	OTelSampleRatio float64
}

// Database
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWT
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTP
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// Scheduler
func (c *Config) GetRedisURL() string               { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool         { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string         { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int          { return c.AsynqConcurrency }
func (c *Config) GetDigestCron() string             { return c.DigestCron }
func (c *Config) GetDigestTimezone() string         { return c.DigestTimezone }
func (c *Config) GetOutboxRetention() time.Duration { return c.OutboxRetention }

// Email
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// WhatsApp
func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

// MinIO
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64    { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketResumes() string { return c.MinioBucketResumes }
func (c *Config) GetMinioBucketVideos() string  { return c.MinioBucketVideos }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// Scoring
func (c *Config) GetGeminiAPIKey() string                { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string                 { return c.GeminiModel }
func (c *Config) GetMoonshotAPIKey() string              { return c.MoonshotAPIKey }
func (c *Config) GetMoonshotModel() string               { return c.MoonshotModel }
func (c *Config) GetAppScoringProvider() string          { return c.AppScoringProvider }
func (c *Config) GetVideoScoringProvider() string        { return c.VideoScoringProvider }
func (c *Config) GetAppScoringTimeout() time.Duration    { return c.AppScoringTimeout }
func (c *Config) GetVideoScoringTimeout() time.Duration  { return c.VideoScoringTimeout }
func (c *Config) GetMediaMaxBytes() int64                { return c.MediaMaxBytes }
func (c *Config) GetResumeMaxBytes() int64               { return c.ResumeMaxBytes }
func (c *Config) GetMediaDownloadTimeout() time.Duration { return c.MediaDownloadTimeout }

// Hiring
func (c *Config) GetFounderEmails() []string       { return c.FounderEmails }
func (c *Config) GetVideoAppURL() string           { return c.VideoAppURL }
func (c *Config) GetCalLink() string               { return c.CalLink }
func (c *Config) GetDossierLinkTTL() time.Duration { return c.DossierLinkTTL }
func (c *Config) GetCompanyName() string           { return c.CompanyName }

// GetOperatorEmails returns who receives escalation alerts, falling back to
// the founders when no operator list is set.
func (c *Config) GetOperatorEmails() []string {
	if len(c.OperatorEmails) > 0 {
		return c.OperatorEmails
	}
	return c.FounderEmails
}

// Webhook
func (c *Config) GetCalWebhookSecret() string      { return c.CalWebhookSecret }
func (c *Config) GetCalWebhookAllowUnsigned() bool { return c.CalWebhookAllowUnsigned }

// Tracing
func (c *Config) GetOTelEnabled() bool        { return c.OTelEnabled }
func (c *Config) GetOTelEndpoint() string     { return c.OTelEndpoint }
func (c *Config) GetOTelInsecure() bool       { return c.OTelInsecure }
func (c *Config) GetOTelSampleRatio() float64 { return c.OTelSampleRatio }
func (c *Config) GetServiceName() string      { return c.ServiceName }
func (c *Config) GetEnv() string              { return c.Env }

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		ServiceName:     getEnv("SERVICE_NAME", "hiring-pipeline"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "hiring"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		DigestCron:       getEnv("DIGEST_CRON", "0 8 * * 1"),
		DigestTimezone:   getEnv("DIGEST_TIMEZONE", "America/Denver"),
		OutboxRetention:  mustDuration(getEnv("OUTBOX_RETENTION", "720h")),

		EmailEnabled:     emailEnabled,
		EmailProvider:    strings.ToLower(getEnv("EMAIL_PROVIDER", "brevo")),
		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Garage Scholars"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),

		WhatsAppURL:      getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:      getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID: getEnv("WHATSAPP_DEVICE_ID", ""),

		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:   mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "104857600")),
		MinioBucketResumes: getEnv("MINIO_BUCKET_RESUMES", "hiring-resumes"),
		MinioBucketVideos:  getEnv("MINIO_BUCKET_VIDEOS", "hiring-videos"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MoonshotAPIKey:       getEnv("MOONSHOT_API_KEY", ""),
		MoonshotModel:        getEnv("MOONSHOT_MODEL", "kimi-k2-turbo-preview"),
		AppScoringProvider:   strings.ToLower(getEnv("APP_SCORING_PROVIDER", "gemini")),
		VideoScoringProvider: strings.ToLower(getEnv("VIDEO_SCORING_PROVIDER", "gemini")),
		AppScoringTimeout:    mustDuration(getEnv("APP_SCORING_TIMEOUT", "120s")),
		VideoScoringTimeout:  mustDuration(getEnv("VIDEO_SCORING_TIMEOUT", "300s")),
		MediaMaxBytes:        mustInt64(getEnv("MEDIA_MAX_BYTES", "104857600")),
		ResumeMaxBytes:       mustInt64(getEnv("RESUME_MAX_BYTES", "10485760")),
		MediaDownloadTimeout: mustDuration(getEnv("MEDIA_DOWNLOAD_TIMEOUT", "60s")),

		FounderEmails:  splitCSV(getEnv("FOUNDER_EMAILS", "")),
		OperatorEmails: splitCSV(getEnv("OPERATOR_EMAILS", "")),
		VideoAppURL:    getEnv("VIDEO_APP_URL", "https://screen.garagescholars.com"),
		CalLink:        getEnv("CAL_LINK", "https://cal.com/garagescholars/interview"),
		DossierLinkTTL: mustDuration(getEnv("DOSSIER_LINK_TTL", "168h")),
		CompanyName:    getEnv("COMPANY_NAME", "Garage Scholars"),

		CalWebhookSecret:        getEnv("CAL_WEBHOOK_SECRET", ""),
		CalWebhookAllowUnsigned: parseBool(getEnv("CAL_WEBHOOK_ALLOW_UNSIGNED", "false")),

		OTelEnabled:     parseBool(getEnv("OTEL_ENABLED", "false")),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelInsecure:    parseBool(getEnv("OTEL_EXPORTER_OTLP_INSECURE", "false")),
		OTelSampleRatio: mustRatio(getEnv("OTEL_SAMPLER_RATIO", "0.1")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled {
		switch cfg.EmailProvider {
		case "brevo":
			if cfg.BrevoAPIKey == "" {
				return nil, fmt.Errorf("BREVO_API_KEY is required when EMAIL_PROVIDER is brevo")
			}
		case "smtp":
			if cfg.SMTPHost == "" {
				return nil, fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER is smtp")
			}
		default:
			return nil, fmt.Errorf("EMAIL_PROVIDER must be brevo or smtp, got %q", cfg.EmailProvider)
		}
		if cfg.EmailFromAddress == "" {
			return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
		}
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	for _, p := range []string{cfg.AppScoringProvider, cfg.VideoScoringProvider} {
		if p != "gemini" && p != "moonshot" {
			return nil, fmt.Errorf("scoring provider must be gemini or moonshot, got %q", p)
		}
	}
	if cfg.VideoScoringProvider != "gemini" {
		return nil, fmt.Errorf("VIDEO_SCORING_PROVIDER must be gemini: video scoring needs native video input")
	}
	if cfg.AppScoringTimeout <= 0 || cfg.VideoScoringTimeout <= 0 {
		return nil, fmt.Errorf("scoring timeouts must be positive durations")
	}
	if cfg.MediaMaxBytes <= 0 || cfg.ResumeMaxBytes <= 0 {
		return nil, fmt.Errorf("MEDIA_MAX_BYTES and RESUME_MAX_BYTES must be positive")
	}
	if cfg.MediaDownloadTimeout <= 0 {
		return nil, fmt.Errorf("MEDIA_DOWNLOAD_TIMEOUT must be a positive duration")
	}
	if cfg.IsProduction() {
		if cfg.CalWebhookSecret == "" {
			return nil, fmt.Errorf("CAL_WEBHOOK_SECRET is required in production")
		}
		if cfg.CalWebhookAllowUnsigned {
			return nil, fmt.Errorf("CAL_WEBHOOK_ALLOW_UNSIGNED cannot be set in production")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustRatio(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0.1
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
