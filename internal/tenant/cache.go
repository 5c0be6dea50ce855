// internal/tenant/cache.go
//
// Host-keyed branding cache.
//
// Context
// -------
// Tenant resolution runs on every request, so resolved business rows are
// cached in a sync.Map keyed by lookup kind + host and loaded through
// singleflight, collapsing the thundering herd on a cold key to one
// query.  Entries idle past the TTL, or beyond the size cap, are removed
// by the background evictor.
//
// Negative results are deliberately not cached: a typo'd subdomain must
// keep producing the not-found flow, and a freshly verified custom
// domain must work on its first request.
package tenant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shorya321/vehicleservice-sub006/internal/business"
	"github.com/shorya321/vehicleservice-sub006/internal/metrics"
)

// Static defaults, tuned for a fleet of at most a few hundred tenants.
const (
	IdleTTL       = 10 * time.Minute
	MaxEntries    = 500
	EvictInterval = time.Minute
)

type entry struct {
	acct     *business.Account
	lastSeen int64 // UnixNano
}

// Cache implements Directory on top of another Directory, usually
// *business.Repo.
type Cache struct {
	dir         Directory
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
	done        chan struct{}
	loopDone    chan struct{}
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(dir Directory, idleTTL time.Duration, maxEntries int) *Cache {
	c := &Cache{
		dir:        dir,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Close stops the evictor and waits for its goroutine to exit.  Call
// exactly once.
func (c *Cache) Close() {
	c.evictTicker.Stop()
	close(c.done)
	<-c.loopDone
}

// ByCustomDomain implements Directory with caching.
func (c *Cache) ByCustomDomain(ctx context.Context, host string) (*business.Account, error) {
	return c.get("dom\x00"+host, func() (*business.Account, error) {
		return c.dir.ByCustomDomain(ctx, host)
	})
}

// BySubdomain implements Directory with caching.
func (c *Cache) BySubdomain(ctx context.Context, sub string) (*business.Account, error) {
	return c.get("sub\x00"+sub, func() (*business.Account, error) {
		return c.dir.BySubdomain(ctx, sub)
	})
}

func (c *Cache) get(key string, load func() (*business.Account, error)) (*business.Account, error) {
	if v, ok := c.m.Load(key); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.acct, nil
	}

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		// Double-check after the singleflight barrier.
		if v, ok := c.m.Load(key); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.acct, nil
		}
		acct, err := load()
		if err != nil {
			if err != business.ErrNotFound {
				metrics.TenantLoadErrorsTotal.Inc()
			}
			return nil, err
		}
		c.m.Store(key, &entry{acct: acct, lastSeen: time.Now().UnixNano()})
		metrics.TenantLoadTotal.Inc()
		metrics.ActiveTenants.Inc()
		return acct, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*business.Account), nil
}
