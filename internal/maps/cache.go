// README: TTL memoisation decorator over any road-distance oracle.
package maps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mashwar/internal/observability"
	"mashwar/internal/types"
)

// Cached memoises successful lookups from an inner oracle. Failures are never
// cached, so a flaky provider is retried on the next request.
type Cached struct {
	inner Oracle
	ttl   time.Duration

	mu    sync.RWMutex
	store map[string]cacheEntry
}

type cacheEntry struct {
	v  RouteEstimate
	ts time.Time
}

// NewCached wraps inner with a TTL cache keyed by rounded coordinates.
func NewCached(inner Oracle, ttl time.Duration) *Cached {
	return &Cached{inner: inner, ttl: ttl, store: make(map[string]cacheEntry)}
}

func (c *Cached) RoadDistance(ctx context.Context, origin, dest types.Point) (RouteEstimate, error) {
	k := cacheKey(origin, dest)
	if est, ok := c.get(k); ok {
		observability.OracleRequests.WithLabelValues("cache_hit").Inc()
		return est, nil
	}

	start := time.Now()
	est, err := c.inner.RoadDistance(ctx, origin, dest)
	observability.OracleLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.OracleRequests.WithLabelValues("error").Inc()
		return RouteEstimate{}, err
	}
	observability.OracleRequests.WithLabelValues("success").Inc()

	c.set(k, est)
	return est, nil
}

func (c *Cached) get(k string) (RouteEstimate, bool) {
	c.mu.RLock()
	e, ok := c.store[k]
	c.mu.RUnlock()
	if !ok {
		return RouteEstimate{}, false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, k)
		c.mu.Unlock()
		return RouteEstimate{}, false
	}
	return e.v, true
}

func (c *Cached) set(k string, v RouteEstimate) {
	c.mu.Lock()
	c.store[k] = cacheEntry{v: v, ts: time.Now()}
	c.mu.Unlock()
}

func cacheKey(a, b types.Point) string {
	return fmtCoord(a) + "->" + fmtCoord(b)
}

func fmtCoord(p types.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
