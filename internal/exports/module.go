package exports

import apphttp "hiring_pipeline_backend/internal/http"

// Module serves the digest preview and the applicant workbook to the console.
type Module struct {
	handler *Handler
}

func NewModule(svc *Service) *Module {
	return &Module{handler: NewHandler(svc)}
}

func (m *Module) Name() string { return "exports" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/digest", m.handler.HandleDigest)
	ctx.Admin.GET("/exports/applicants.xlsx", m.handler.HandleApplicantsWorkbook)
}

var _ apphttp.Module = (*Module)(nil)
