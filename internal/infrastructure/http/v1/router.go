// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"pkgconsole/internal/infrastructure/http/v1/handlers"
	"pkgconsole/internal/infrastructure/http/v1/middleware"
	"pkgconsole/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Filters serves the saved filter resource
	Filters handlers.FilterService

	// DB is checked by the readiness probe
	DB handlers.Pinger

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	RegisterHealthRoutes(router.Group("/health"), handlers.NewHealthHandler(cfg.DB))

	api := router.Group("/api")
	RegisterFilterRoutes(api.Group("/filters"), handlers.NewFilterHandler(cfg.Filters))

	return router
}
