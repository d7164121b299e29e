package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHealthChecker mocks a pingable dependency.
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupHealthRouter(t *testing.T, db, redis HealthChecker, cache RegionCacheReader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewHealthHandler(db, redis, cache, 2*time.Hour)

	router := gin.New()
	router.GET("/health", handler.HealthCheck)
	return router
}

func TestHealthCheckAllHealthy(t *testing.T) {
	db := &MockHealthChecker{}
	db.On("HealthCheck", mock.Anything).Return(nil)
	redis := &MockHealthChecker{}
	redis.On("HealthCheck", mock.Anything).Return(nil)
	cache := &stubRegionCache{lastFetched: time.Now().Add(-10 * time.Minute)}

	router := setupHealthRouter(t, db, redis, cache)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "healthy", response.Services["database"])
	assert.Equal(t, "healthy", response.Services["redis"])
	assert.Equal(t, "healthy", response.Services["dataset"])
	assert.NotNil(t, response.LastFetched)
	assert.NotEmpty(t, response.Uptime)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	db := &MockHealthChecker{}
	db.On("HealthCheck", mock.Anything).Return(assert.AnError)
	redis := &MockHealthChecker{}
	redis.On("HealthCheck", mock.Anything).Return(nil)

	router := setupHealthRouter(t, db, redis, &stubRegionCache{lastFetched: time.Now()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "degraded", response.Status)
	assert.Contains(t, response.Services["database"], "unhealthy")
}

func TestHealthCheckStaleDatasetDoesNotFailProbe(t *testing.T) {
	db := &MockHealthChecker{}
	db.On("HealthCheck", mock.Anything).Return(nil)
	redis := &MockHealthChecker{}
	redis.On("HealthCheck", mock.Anything).Return(nil)
	// Fetched far beyond the 2h staleness threshold.
	cache := &stubRegionCache{lastFetched: time.Now().Add(-24 * time.Hour)}

	router := setupHealthRouter(t, db, redis, cache)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Services["dataset"], "stale")
}

func TestHealthCheckNeverFetched(t *testing.T) {
	db := &MockHealthChecker{}
	db.On("HealthCheck", mock.Anything).Return(nil)
	redis := &MockHealthChecker{}
	redis.On("HealthCheck", mock.Anything).Return(nil)

	router := setupHealthRouter(t, db, redis, &stubRegionCache{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
