package router

import (
	"context"
	"net/http"
	"time"

	apphttp "hiring_pipeline_backend/internal/http"
	"hiring_pipeline_backend/internal/http/middleware"
	"hiring_pipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const readyTimeout = 2 * time.Second

// New builds the Gin engine and mounts every module's routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(app.Config.GetServiceName()))
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(middleware.CORS(app.Config))

	engine.GET("/api/health", func(c *gin.Context) {
		httpkit.OK(c, gin.H{"status": "ok"})
	})
	engine.GET("/api/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		for _, h := range app.Health {
			if err := h.Ping(ctx); err != nil {
				app.Logger.Warn("readiness check failed", "error", err)
				httpkit.Error(c, http.StatusServiceUnavailable, "not ready", nil)
				return
			}
		}
		httpkit.OK(c, gin.H{"status": "ready"})
	})

	v1 := engine.Group("/api/v1")
	routerCtx := &apphttp.RouterContext{
		V1:                v1,
		Admin:             v1.Group("/admin", httpkit.AuthRequired(app.Config), httpkit.RequireRole(httpkit.RoleAdmin)),
		PublicRateLimiter: httpkit.NewPublicRateLimiter(app.Logger),
	}
	for _, mod := range app.Modules {
		mod.RegisterRoutes(routerCtx)
		app.Logger.Info("registered http module", "module", mod.Name())
	}

	return engine
}
