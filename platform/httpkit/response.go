package httpkit

import (
	"net/http"

	"hiring_pipeline_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error writes an ErrorResponse. details may be nil.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Accepted is used for operations whose effect completes in the worker.
func Accepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}

// HandleError writes err and reports whether there was one. An *apperr.Error
// anywhere in the chain picks the status; anything else is a 500 whose text
// stays in the gin error list for RequestLogger and is never sent.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if e, ok := apperr.As(err); ok {
		Error(c, e.HTTPStatus(), e.Message, e.Details)
		return true
	}
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "internal error", nil)
	return true
}
