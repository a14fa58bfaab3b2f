package http

import (
	"context"

	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/logger"
)

// RouterConfig is the config surface router.New reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	GetServiceName() string
}

// HealthChecker is checked by /api/ready. The Postgres pool and the task
// queue both satisfy it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled in cmd/api and handed to router.New.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  []HealthChecker
	Modules []Module
}
