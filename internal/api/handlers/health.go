package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/epicast-dev/epicast-go/internal/telemetry"
)

var startTime = time.Now()

// HealthChecker is anything with a pingable connection.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service and dependency status.
type HealthHandler struct {
	db    HealthChecker
	redis HealthChecker
	cache RegionCacheReader
	// Data older than this is flagged stale in the health report.
	staleAfter time.Duration
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Version     string            `json:"version"`
	Uptime      string            `json:"uptime"`
	Services    map[string]string `json:"services"`
	LastFetched *time.Time        `json:"last_fetched,omitempty"`
	System      SystemStats       `json:"system"`
}

// SystemStats carries host resource figures for capacity debugging.
type SystemStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CPUPercent        float64 `json:"cpu_percent"`
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db, redis HealthChecker, cache RegionCacheReader, staleAfter time.Duration) *HealthHandler {
	return &HealthHandler{
		db:         db,
		redis:      redis,
		cache:      cache,
		staleAfter: staleAfter,
	}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	services := make(map[string]string)

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "unhealthy: not configured"
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "unhealthy: not configured"
	}

	response := HealthResponse{
		Timestamp: time.Now().UTC(),
		Version:   telemetry.ServiceVersion,
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Services:  services,
		System:    collectSystemStats(),
	}

	if h.cache != nil {
		if fetchedAt, ok := h.cache.LastFetched(ctx); ok {
			response.LastFetched = &fetchedAt
			age := time.Since(fetchedAt)
			if h.staleAfter > 0 && age > h.staleAfter {
				services["dataset"] = fmt.Sprintf("stale: last fetched %s ago", age.Round(time.Minute))
			} else {
				services["dataset"] = "healthy"
			}
		} else {
			services["dataset"] = "unhealthy: never fetched"
		}
	}

	// A stale dataset is flagged but does not fail the probe; only broken
	// dependencies do.
	response.Status = "healthy"
	statusCode := http.StatusOK
	for _, status := range services {
		if strings.HasPrefix(status, "unhealthy") {
			response.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(statusCode, response)
}

func collectSystemStats() SystemStats {
	stats := SystemStats{}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsedPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	return stats
}
