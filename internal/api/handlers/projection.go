package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/epicast-dev/epicast-go/internal/database"
	"github.com/epicast-dev/epicast-go/internal/models"
	"github.com/epicast-dev/epicast-go/internal/utils"
)

// Projector runs projection pipelines.
type Projector interface {
	Project(ctx context.Context, req models.ProjectionRequest) (*models.ProjectionResult, error)
	Rates() models.DiseaseRates
}

// RegionReader loads region snapshots from persistent storage.
type RegionReader interface {
	GetRegion(ctx context.Context, name string) (*models.RegionState, error)
}

// RegionCacheReader serves cached snapshots and the dataset staleness stamp.
type RegionCacheReader interface {
	Get(ctx context.Context, name string) (*models.RegionState, bool)
	LastFetched(ctx context.Context) (time.Time, bool)
}

// ProjectionHandler serves the projection call surface.
type ProjectionHandler struct {
	projector Projector
	regions   RegionReader
	cache     RegionCacheReader
	logger    *logrus.Logger
}

// NewProjectionHandler creates a projection handler.
func NewProjectionHandler(projector Projector, regions RegionReader, cache RegionCacheReader, logger *logrus.Logger) *ProjectionHandler {
	return &ProjectionHandler{
		projector: projector,
		regions:   regions,
		cache:     cache,
		logger:    logger,
	}
}

// CreateProjection handles POST /api/v1/projections: a direct engine
// invocation with fully caller-supplied inputs.
func (h *ProjectionHandler) CreateProjection(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.projector.Project(c.Request.Context(), req)
	if err != nil {
		h.respondProjectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegionProjection handles GET /api/v1/regions/:name/projection. The region's
// confirmed cases and population seed the run; horizon and contact rate come
// from query parameters with configured defaults.
func (h *ProjectionHandler) RegionProjection(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()

	region, ok := h.cache.Get(ctx, name)
	if !ok {
		var err error
		region, err = h.regions.GetRegion(ctx, name)
		if err != nil {
			if errors.Is(err, database.ErrRegionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown region: " + name})
				return
			}
			h.logger.WithError(err).WithField("region", name).Error("Failed to load region")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load region"})
			return
		}
	}

	rates := h.projector.Rates()

	horizonDays, err := intQuery(c, "horizon_days", 90)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon_days must be an integer"})
		return
	}
	contactRate, err := floatQuery(c, "contact_rate", rates.DailyContacts.Default)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact_rate must be a number"})
		return
	}

	result, err := h.projector.Project(ctx, models.ProjectionRequest{
		ConfirmedCases: region.ConfirmedCases,
		Population:     region.Population,
		HorizonDays:    horizonDays,
		ContactRate:    contactRate,
	})
	if err != nil {
		h.respondProjectionError(c, err)
		return
	}

	response := models.RegionProjectionResponse{
		Region:     *region,
		Projection: *result,
	}
	if fetchedAt, ok := h.cache.LastFetched(ctx); ok {
		response.LastFetched = &fetchedAt
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProjectionHandler) respondProjectionError(c *gin.Context, err error) {
	if utils.IsInvalidParameter(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.WithError(err).Error("Projection failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "projection failed"})
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func floatQuery(c *gin.Context, key string, fallback float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}
