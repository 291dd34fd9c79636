package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters implements every hook interface with in-process atomic counters.
// It is what `photogrid serve` reports at /stats.
type Counters struct {
	started  time.Time
	grids    atomic.Int64
	failed   atomic.Int64
	cells    atomic.Int64
	composeN atomic.Int64 // total compose time, ns
	bytesOut atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	requests atomic.Int64
	errors5x atomic.Int64
	panics   atomic.Int64
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{started: time.Now()}
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Uptime         string  `json:"uptime"`
	Grids          int64   `json:"grids"`
	FailedGrids    int64   `json:"failed_grids"`
	Cells          int64   `json:"cells"`
	AvgComposeMS   float64 `json:"avg_compose_ms"`
	EncodedBytes   int64   `json:"encoded_bytes"`
	CacheHits      int64   `json:"cache_hits"`
	CacheMisses    int64   `json:"cache_misses"`
	Requests       int64   `json:"requests"`
	ServerErrors   int64   `json:"server_errors"`
	RecoveredPanic int64   `json:"recovered_panics"`
}

func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Uptime:         time.Since(c.started).Round(time.Second).String(),
		Grids:          c.grids.Load(),
		FailedGrids:    c.failed.Load(),
		Cells:          c.cells.Load(),
		EncodedBytes:   c.bytesOut.Load(),
		CacheHits:      c.hits.Load(),
		CacheMisses:    c.misses.Load(),
		Requests:       c.requests.Load(),
		ServerErrors:   c.errors5x.Load(),
		RecoveredPanic: c.panics.Load(),
	}
	if s.Grids > 0 {
		s.AvgComposeMS = float64(c.composeN.Load()) / float64(s.Grids) / float64(time.Millisecond)
	}
	return s
}

func (c *Counters) OnComposeStart(context.Context, int, int) {}

func (c *Counters) OnComposeComplete(_ context.Context, cells int, d time.Duration, err error) {
	if err != nil {
		c.failed.Add(1)
		return
	}
	c.grids.Add(1)
	c.cells.Add(int64(cells))
	c.composeN.Add(int64(d))
}

func (c *Counters) OnEncode(_ context.Context, _ string, size int, _ time.Duration) {
	c.bytesOut.Add(int64(size))
}

func (c *Counters) OnCacheHit(context.Context, string)      { c.hits.Add(1) }
func (c *Counters) OnCacheMiss(context.Context, string)     { c.misses.Add(1) }
func (c *Counters) OnCacheSet(context.Context, string, int) {}

func (c *Counters) OnRequest(_ context.Context, _, _ string, status int, _ time.Duration) {
	c.requests.Add(1)
	if status >= 500 {
		c.errors5x.Add(1)
	}
}

func (c *Counters) OnPanic(context.Context, string, string, any) { c.panics.Add(1) }

var (
	_ ComposeHooks = (*Counters)(nil)
	_ CacheHooks   = (*Counters)(nil)
	_ RequestHooks = (*Counters)(nil)
)
