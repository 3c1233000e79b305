package leaderboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/educlara/educlara/core"
)

// Cache backs the shared HTTP surface: one viewer-agnostic snapshot per
// time scope, refreshed on the fixed interval. Handlers clone entries and
// stamp the viewer per request.
//
// It uses the same sequence-number staleness guard as Service, tracked per
// scope.
type Cache struct {
	agg      *Aggregator
	logger   core.Logger
	interval time.Duration

	issued map[TimeScope]*uint64

	mu    sync.RWMutex
	snaps map[TimeScope]Snapshot
}

func NewCache(agg *Aggregator, logger core.Logger, interval time.Duration) *Cache {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Cache{
		agg:      agg,
		logger:   logger,
		interval: interval,
		issued: map[TimeScope]*uint64{
			ScopeWeek:    new(uint64),
			ScopeAllTime: new(uint64),
		},
		snaps: make(map[TimeScope]Snapshot, 2),
	}
}

// Start refreshes both scopes immediately, then on every interval tick,
// until ctx is done.
func (c *Cache) Start(ctx context.Context) {
	c.refreshAll(ctx)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshAll(ctx)
		}
	}
}

func (c *Cache) refreshAll(ctx context.Context) {
	c.Refresh(ctx, ScopeAllTime)
	c.Refresh(ctx, ScopeWeek)
}

// Refresh runs one viewer-agnostic cycle for the scope, discarding the
// result if a newer cycle for that scope was issued meanwhile.
func (c *Cache) Refresh(ctx context.Context, scope TimeScope) {
	if !scope.Valid() {
		scope = ScopeAllTime
	}
	counter := c.issued[scope]
	seq := atomic.AddUint64(counter, 1)

	started := time.Now()
	snap := c.agg.BuildSnapshot(ctx, scope, "")
	snap.Seq = seq

	if seq != atomic.LoadUint64(counter) {
		observeStaleCycle()
		return
	}
	observeCycle(snap, time.Since(started).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if snap.Seq < c.snaps[scope].Seq {
		observeStaleCycle()
		return
	}
	c.snaps[scope] = snap
}

// Get returns the held snapshot for the scope, fetching it on first use so
// a fresh process does not serve an empty board before the first tick.
func (c *Cache) Get(ctx context.Context, scope TimeScope) Snapshot {
	if !scope.Valid() {
		scope = ScopeAllTime
	}
	c.mu.RLock()
	snap, ok := c.snaps[scope]
	c.mu.RUnlock()
	if ok {
		return snap
	}
	c.Refresh(ctx, scope)

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snaps[scope]
}
