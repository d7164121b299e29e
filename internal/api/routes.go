package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/epicast-dev/epicast-go/internal/api/handlers"
	"github.com/epicast-dev/epicast-go/internal/middleware"
)

// Handlers bundles the constructed handler set for route registration.
type Handlers struct {
	Projection *handlers.ProjectionHandler
	Regions    *handlers.RegionsHandler
	Health     *handlers.HealthHandler
}

// SetupRoutes registers middleware and every endpoint on the router.
func SetupRoutes(router *gin.Engine, serviceName string, logger *logrus.Logger, h Handlers) {
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	router.GET("/health", h.Health.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		projections := v1.Group("/projections")
		{
			projections.POST("", h.Projection.CreateProjection)
		}

		regions := v1.Group("/regions")
		{
			regions.GET("", h.Regions.ListRegions)
			regions.GET("/:name", h.Regions.GetRegion)
			regions.GET("/:name/projection", h.Projection.RegionProjection)
		}
	}
}
