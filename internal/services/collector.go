package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/epicast-dev/epicast-go/internal/config"
	"github.com/epicast-dev/epicast-go/internal/models"
)

// RegionStore is the subset of the region repository the collector writes to.
type RegionStore interface {
	UpsertRegion(ctx context.Context, region models.RegionState) (*models.RegionState, error)
}

// RegionCacheWriter is the subset of the region cache the collector refreshes.
type RegionCacheWriter interface {
	Set(ctx context.Context, region models.RegionState) error
	SetLastFetched(ctx context.Context, fetchedAt time.Time) error
}

// regionRecord is one entry of the upstream dataset document.
type regionRecord struct {
	Country      string `json:"country"`
	Population   int64  `json:"population"`
	Confirmed    int64  `json:"confirmed"`
	Recovered    int64  `json:"recovered"`
	Deaths       int64  `json:"deaths"`
	HospitalBeds int64  `json:"hospital_beds"`
}

// RegionCollector periodically fetches the external outbreak dataset and
// keeps the regions table and cache fresh. Consecutive fetch failures are
// counted; after maxErrors the loop stops and the service reports unhealthy
// data staleness through the cache stamp simply by no longer updating it.
type RegionCollector struct {
	store      RegionStore
	cache      RegionCacheWriter
	httpClient *http.Client
	sourceURL  string
	interval   time.Duration
	maxErrors  int
	logger     *logrus.Logger

	mu         sync.RWMutex
	errorCount int
	isRunning  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegionCollector creates a collector from its configuration. Durations in
// cfg are validated at config load time.
func NewRegionCollector(store RegionStore, cache RegionCacheWriter, cfg config.CollectorConfig, logger *logrus.Logger) *RegionCollector {
	ctx, cancel := context.WithCancel(context.Background())

	interval, err := time.ParseDuration(cfg.FetchInterval)
	if err != nil {
		interval = time.Hour
	}
	timeout, err := time.ParseDuration(cfg.FetchTimeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	return &RegionCollector{
		store:      store,
		cache:      cache,
		httpClient: &http.Client{Timeout: timeout},
		sourceURL:  cfg.SourceURL,
		interval:   interval,
		maxErrors:  cfg.MaxErrors,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start performs one synchronous fetch so the service comes up with data,
// then launches the background refresh loop. A failed initial fetch is logged
// but does not abort startup; the loop will retry on its next tick.
func (c *RegionCollector) Start() error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return fmt.Errorf("region collector already running")
	}
	c.isRunning = true
	c.mu.Unlock()

	c.logger.WithField("interval", c.interval.String()).Info("Starting region data collector")

	if err := c.CollectOnce(c.ctx); err != nil {
		c.logger.WithError(err).Warn("Initial region data fetch failed")
	}

	c.wg.Add(1)
	go c.run()

	return nil
}

// Stop cancels the refresh loop and waits for it to exit.
func (c *RegionCollector) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.logger.Info("Region data collector stopped")
}

// ErrorCount returns the number of consecutive failed fetches.
func (c *RegionCollector) ErrorCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errorCount
}

func (c *RegionCollector) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if err := c.CollectOnce(c.ctx); err != nil {
				c.logger.WithError(err).Error("Region data fetch failed")
				c.mu.Lock()
				c.errorCount++
				stop := c.maxErrors > 0 && c.errorCount >= c.maxErrors
				c.mu.Unlock()
				if stop {
					c.logger.WithField("max_errors", c.maxErrors).Error("Too many consecutive fetch failures, collector giving up")
					return
				}
				continue
			}
			c.mu.Lock()
			c.errorCount = 0
			c.mu.Unlock()
		}
	}
}

// CollectOnce fetches the dataset once and stores every region it contains.
func (c *RegionCollector) CollectOnce(ctx context.Context) error {
	records, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	titler := cases.Title(language.English)
	stored := 0
	for _, rec := range records {
		if rec.Country == "" || rec.Population <= 0 {
			continue
		}
		region := models.RegionState{
			Name:           titler.String(strings.TrimSpace(rec.Country)),
			Population:     rec.Population,
			ConfirmedCases: rec.Confirmed,
			RecoveredCases: rec.Recovered,
			Deaths:         rec.Deaths,
			HospitalBeds:   rec.HospitalBeds,
		}

		persisted, err := c.store.UpsertRegion(ctx, region)
		if err != nil {
			c.logger.WithError(err).WithField("region", region.Name).Error("Failed to store region snapshot")
			continue
		}
		if err := c.cache.Set(ctx, *persisted); err != nil {
			c.logger.WithError(err).WithField("region", region.Name).Warn("Failed to cache region snapshot")
		}
		stored++
	}

	if stored == 0 {
		return fmt.Errorf("dataset at %s contained no usable region records", c.sourceURL)
	}

	fetchedAt := time.Now().UTC()
	if err := c.cache.SetLastFetched(ctx, fetchedAt); err != nil {
		c.logger.WithError(err).Warn("Failed to record last-fetched stamp")
	}

	c.logger.WithFields(logrus.Fields{
		"regions":    stored,
		"fetched_at": fetchedAt.Format(time.RFC3339),
	}).Info("Region dataset refreshed")

	return nil
}

func (c *RegionCollector) fetch(ctx context.Context) ([]regionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset fetch returned status %d", resp.StatusCode)
	}

	var records []regionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	return records, nil
}
