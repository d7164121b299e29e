package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/epicast-dev/epicast-go/internal/database"
	"github.com/epicast-dev/epicast-go/internal/models"
	"github.com/epicast-dev/epicast-go/internal/services"
)

// testLogger returns a silenced logger for handler tests.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestProjector builds a real projection service with default rates; the
// engine is cheap enough that handler tests do not need to mock it.
func newTestProjector(t *testing.T) *services.ProjectionService {
	t.Helper()
	svc, err := services.NewProjectionService(models.DefaultDiseaseRates(), testLogger())
	require.NoError(t, err)
	return svc
}

// stubRegionStore serves canned regions in place of the repository.
type stubRegionStore struct {
	regions map[string]models.RegionState
	err     error
}

func (s *stubRegionStore) GetRegion(_ context.Context, name string) (*models.RegionState, error) {
	if s.err != nil {
		return nil, s.err
	}
	region, ok := s.regions[name]
	if !ok {
		return nil, database.ErrRegionNotFound
	}
	return &region, nil
}

func (s *stubRegionStore) ListRegions(context.Context) ([]models.RegionState, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.RegionState, 0, len(s.regions))
	for _, region := range s.regions {
		out = append(out, region)
	}
	return out, nil
}

// stubRegionCache is an always-consistent in-memory stand-in for the Redis
// region cache.
type stubRegionCache struct {
	regions     map[string]models.RegionState
	lastFetched time.Time
}

func (c *stubRegionCache) Get(_ context.Context, name string) (*models.RegionState, bool) {
	if c.regions == nil {
		return nil, false
	}
	region, ok := c.regions[name]
	if !ok {
		return nil, false
	}
	return &region, true
}

func (c *stubRegionCache) LastFetched(context.Context) (time.Time, bool) {
	if c.lastFetched.IsZero() {
		return time.Time{}, false
	}
	return c.lastFetched, true
}

func canadaRegion() models.RegionState {
	return models.RegionState{
		Name:           "Canada",
		Population:     37589262,
		ConfirmedCases: 4043,
		RecoveredCases: 228,
		Deaths:         38,
		HospitalBeds:   96553,
		UpdatedAt:      time.Now().UTC(),
	}
}
