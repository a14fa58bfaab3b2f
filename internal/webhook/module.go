package webhook

import (
	apphttp "hiring_pipeline_backend/internal/http"
	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/logger"
)

// Module exposes POST /api/v1/webhooks/booking.
type Module struct {
	handler *Handler
}

// NewModule reads the signing settings. Without a secret every delivery is
// rejected unless CAL_WEBHOOK_ALLOW_UNSIGNED is set for local development.
func NewModule(bookings BookingConfirmer, escalator Escalator, cfg config.WebhookConfig, log *logger.Logger) *Module {
	signing := Signing{Secret: cfg.GetCalWebhookSecret(), AllowUnsigned: cfg.GetCalWebhookAllowUnsigned()}
	switch {
	case signing.Secret != "":
	case signing.AllowUnsigned:
		log.Warn("CAL_WEBHOOK_ALLOW_UNSIGNED is set; booking webhooks are accepted unsigned")
	default:
		log.Warn("CAL_WEBHOOK_SECRET is not set; every booking webhook will be rejected")
	}
	return &Module{handler: NewHandler(bookings, escalator, signing, log)}
}

func (m *Module) Name() string { return "webhook" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/webhooks/booking", ctx.PublicRateLimiter.RateLimit(), m.handler.HandleBooking)
}

var _ apphttp.Module = (*Module)(nil)
