package exports

import (
	"context"
	"net/http"
	"time"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DigestReader is what the admin endpoints need from the Service.
type DigestReader interface {
	Build(ctx context.Context) (hiring.Digest, error)
	Workbook(ctx context.Context) ([]byte, error)
}

// Handler serves the digest and spreadsheet export to admins.
type Handler struct {
	svc DigestReader
	now func() time.Time
}

func NewHandler(svc DigestReader) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// HandleDigest returns the current weekly aggregate as JSON.
func (h *Handler) HandleDigest(c *gin.Context) {
	d, err := h.svc.Build(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, d)
}

// HandleApplicantsWorkbook streams the applicant spreadsheet.
func (h *Handler) HandleApplicantsWorkbook(c *gin.Context) {
	data, err := h.svc.Workbook(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+WorkbookFileName(h.now())+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
