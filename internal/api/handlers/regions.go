package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/epicast-dev/epicast-go/internal/database"
	"github.com/epicast-dev/epicast-go/internal/models"
)

// RegionLister loads region snapshots for the listing endpoints.
type RegionLister interface {
	GetRegion(ctx context.Context, name string) (*models.RegionState, error)
	ListRegions(ctx context.Context) ([]models.RegionState, error)
}

// RegionsHandler serves the region-statistics endpoints.
type RegionsHandler struct {
	regions RegionLister
	cache   RegionCacheReader
	logger  *logrus.Logger
	printer *message.Printer
}

// NewRegionsHandler creates a regions handler.
func NewRegionsHandler(regions RegionLister, cache RegionCacheReader, logger *logrus.Logger) *RegionsHandler {
	return &RegionsHandler{
		regions: regions,
		cache:   cache,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// ListRegions handles GET /api/v1/regions.
func (h *RegionsHandler) ListRegions(c *gin.Context) {
	ctx := c.Request.Context()

	regions, err := h.regions.ListRegions(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list regions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list regions"})
		return
	}

	response := models.RegionListResponse{
		Regions: regions,
		Total:   len(regions),
	}
	if fetchedAt, ok := h.cache.LastFetched(ctx); ok {
		response.LastFetched = &fetchedAt
	}

	c.JSON(http.StatusOK, response)
}

// GetRegion handles GET /api/v1/regions/:name. The summary line formats
// counts with thousands separators for display.
func (h *RegionsHandler) GetRegion(c *gin.Context) {
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

	response := models.RegionDetailResponse{
		Region: *region,
		Summary: h.printer.Sprintf("Population: %d, Confirmed: %d, Recovered: %d, Dead: %d",
			region.Population, region.ConfirmedCases, region.RecoveredCases, region.Deaths),
	}
	if fetchedAt, ok := h.cache.LastFetched(ctx); ok {
		response.LastFetched = &fetchedAt
	}

	c.JSON(http.StatusOK, response)
}
