package v1

import (
	"github.com/gin-gonic/gin"
)

// FilterRouteHandler defines the saved filter resource handlers.
type FilterRouteHandler interface {
	List(c *gin.Context)
	Upsert(c *gin.Context)
	Delete(c *gin.Context)
}

// HealthRouteHandler defines the probe handlers.
type HealthRouteHandler interface {
	Live(c *gin.Context)
	Ready(c *gin.Context)
}

// RegisterFilterRoutes registers the saved filter routes on group.
func RegisterFilterRoutes(group *gin.RouterGroup, h FilterRouteHandler) {
	group.GET("", h.List)
	group.PUT("", h.Upsert)
	group.DELETE("/:id", h.Delete)
}

// RegisterHealthRoutes registers /live and /ready on group.
func RegisterHealthRoutes(group *gin.RouterGroup, h HealthRouteHandler) {
	group.GET("/live", h.Live)
	group.GET("/ready", h.Ready)
}
