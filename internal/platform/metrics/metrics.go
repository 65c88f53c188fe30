package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests     uint64
	errorRequests     uint64
	rateLimited       uint64
	totalDurationMs   uint64
	datasetsLoaded    uint64
	datasetCacheHits  uint64
	datasetLoadFailed uint64
	rowsNormalized    uint64
	coercionFailures  uint64
	actionsSaved      uint64
	exportsRendered   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// DatasetLoaded counts one normalized dataset and its data-quality totals.
func (c *Collector) DatasetLoaded(rows, coercionFailures int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.datasetsLoaded, 1)
	atomic.AddUint64(&c.rowsNormalized, uint64(rows))
	atomic.AddUint64(&c.coercionFailures, uint64(coercionFailures))
}

func (c *Collector) DatasetCacheHit() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.datasetCacheHits, 1)
}

func (c *Collector) DatasetLoadFailed() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.datasetLoadFailed, 1)
}

func (c *Collector) ActionSaved() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.actionsSaved, 1)
}

func (c *Collector) ExportRendered() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.exportsRendered, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":       atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"datasetsLoadedTotal":    atomic.LoadUint64(&c.datasetsLoaded),
		"datasetCacheHitsTotal":  atomic.LoadUint64(&c.datasetCacheHits),
		"datasetLoadFailedTotal": atomic.LoadUint64(&c.datasetLoadFailed),
		"rowsNormalizedTotal":    atomic.LoadUint64(&c.rowsNormalized),
		"coercionFailuresTotal":  atomic.LoadUint64(&c.coercionFailures),
		"actionsSavedTotal":      atomic.LoadUint64(&c.actionsSaved),
		"exportsRenderedTotal":   atomic.LoadUint64(&c.exportsRendered),
	}
}
