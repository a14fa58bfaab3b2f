package handler

import apphttp "hiring_pipeline_backend/internal/http"

// Module mounts candidate intake under /api/v1/applications and the founder
// console under the admin group.
type Module struct {
	handler *Handler
}

func NewModule(h *Handler) *Module { return &Module{handler: h} }

func (m *Module) Name() string { return "hiring" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/applications", ctx.PublicRateLimiter.RateLimit()))
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
