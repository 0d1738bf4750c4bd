package metrics

import (
	"os"
	"time"

	"vidpress/internal/logging"
)

// CacheStatsProvider reports result cache occupancy.
type CacheStatsProvider interface {
	Stats() (entries int, bytes int64)
}

// Collector periodically refreshes gauges computed from external state.
type Collector struct {
	cache    CacheStatsProvider
	dbPath   string
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a metrics collector. dbPath may be empty to skip
// database size collection.
func NewCollector(cache CacheStatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		cache:    cache,
		dbPath:   dbPath,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.cache != nil {
		entries, bytes := c.cache.Stats()
		CacheEntryCount.Set(float64(entries))
		CacheSizeBytes.Set(float64(bytes))
		logging.Debug("Metrics collected: cache entries=%d, bytes=%d", entries, bytes)
	}

	if c.dbPath != "" {
		c.collectDBSizes()
	}
}

func (c *Collector) collectDBSizes() {
	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}
	for label, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
