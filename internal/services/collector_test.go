package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epicast-dev/epicast-go/internal/config"
	"github.com/epicast-dev/epicast-go/internal/models"
)

type fakeRegionStore struct {
	mu      sync.Mutex
	regions map[string]models.RegionState
	fail    bool
}

func newFakeRegionStore() *fakeRegionStore {
	return &fakeRegionStore{regions: make(map[string]models.RegionState)}
}

func (s *fakeRegionStore) UpsertRegion(_ context.Context, region models.RegionState) (*models.RegionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, assert.AnError
	}
	region.UpdatedAt = time.Now()
	s.regions[region.Name] = region
	return &region, nil
}

type fakeRegionCache struct {
	mu          sync.Mutex
	regions     map[string]models.RegionState
	lastFetched time.Time
}

func newFakeRegionCache() *fakeRegionCache {
	return &fakeRegionCache{regions: make(map[string]models.RegionState)}
}

func (c *fakeRegionCache) Set(_ context.Context, region models.RegionState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions[region.Name] = region
	return nil
}

func (c *fakeRegionCache) SetLastFetched(_ context.Context, fetchedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFetched = fetchedAt
	return nil
}

func testCollector(t *testing.T, sourceURL string, store RegionStore, cache RegionCacheWriter) *RegionCollector {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewRegionCollector(store, cache, config.CollectorConfig{
		Enabled:       true,
		SourceURL:     sourceURL,
		FetchInterval: "1h",
		FetchTimeout:  "5s",
		MaxErrors:     3,
	}, logger)
}

const datasetJSON = `[
	{"country": "canada", "population": 37589262, "confirmed": 4043, "recovered": 228, "deaths": 38, "hospital_beds": 96553},
	{"country": "japan", "population": 126860301, "confirmed": 1307, "recovered": 310, "deaths": 42, "hospital_beds": 1641468},
	{"country": "", "population": 1000, "confirmed": 1},
	{"country": "nowhere", "population": 0, "confirmed": 5}
]`

func TestCollectOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(datasetJSON))
	}))
	defer server.Close()

	store := newFakeRegionStore()
	cache := newFakeRegionCache()
	collector := testCollector(t, server.URL, store, cache)

	require.NoError(t, collector.CollectOnce(context.Background()))

	// Names are title-cased; unusable records are skipped.
	require.Len(t, store.regions, 2)
	canada, ok := store.regions["Canada"]
	require.True(t, ok)
	assert.Equal(t, int64(4043), canada.ConfirmedCases)
	assert.Equal(t, int64(96553), canada.HospitalBeds)

	_, ok = store.regions["Japan"]
	assert.True(t, ok)

	assert.Len(t, cache.regions, 2)
	assert.False(t, cache.lastFetched.IsZero(), "last-fetched stamp must be recorded")
}

func TestCollectOnceUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	store := newFakeRegionStore()
	cache := newFakeRegionCache()
	collector := testCollector(t, server.URL, store, cache)

	err := collector.CollectOnce(context.Background())
	assert.Error(t, err)
	assert.Empty(t, store.regions)
	assert.True(t, cache.lastFetched.IsZero(), "stamp must not move on failure")
}

func TestCollectOnceMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	collector := testCollector(t, server.URL, newFakeRegionStore(), newFakeRegionCache())

	assert.Error(t, collector.CollectOnce(context.Background()))
}

func TestCollectOnceEmptyDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	collector := testCollector(t, server.URL, newFakeRegionStore(), newFakeRegionCache())

	assert.Error(t, collector.CollectOnce(context.Background()))
}

func TestCollectorStartStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(datasetJSON))
	}))
	defer server.Close()

	store := newFakeRegionStore()
	cache := newFakeRegionCache()
	collector := testCollector(t, server.URL, store, cache)

	require.NoError(t, collector.Start())
	assert.Error(t, collector.Start(), "double start must fail")

	// The synchronous initial fetch already populated the store.
	store.mu.Lock()
	populated := len(store.regions)
	store.mu.Unlock()
	assert.Equal(t, 2, populated)

	collector.Stop()
	// Stop is idempotent.
	collector.Stop()
}
