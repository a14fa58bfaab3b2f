// Package http holds what the router needs from the composition root: the
// Module contract and the App that lists modules and readiness checks.
package http

import (
	"hiring_pipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module mounts one domain's routes. Name is only used in startup logs.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module may mount on.
type RouterContext struct {
	// V1 is /api/v1 with no authentication. Candidate-facing routes and the
	// booking webhook live here behind PublicRateLimiter.
	V1 *gin.RouterGroup
	// Admin is /api/v1/admin, restricted to bearer tokens with the admin role.
	Admin             *gin.RouterGroup
	PublicRateLimiter *httpkit.PublicRateLimiter
}
