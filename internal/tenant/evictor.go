// evictor.go houses the eviction loop for Cache.  Every EvictInterval it
// scans the map and removes:
//
//   - entries idle longer than idleTTL
//   - least-recently-used entries when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package tenant

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/shorya321/vehicleservice-sub006/internal/metrics"
)

func (c *Cache) evictLoop() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.done:
			return
		case <-c.evictTicker.C:
			c.evictOnce(time.Now().UnixNano())
		}
	}
}

// evictOnce runs one idle pass and, under size pressure, one LRU pass.
func (c *Cache) evictOnce(now int64) {
	var count int

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	c.m.Range(func(key, value any) bool {
		count++
		ent := value.(*entry)
		idle := time.Duration(now - atomic.LoadInt64(&ent.lastSeen))
		if idle > c.idleTTL {
			c.m.Delete(key)
			count--
			zap.S().Debugw("tenant evicted", "key", key, "idle", idle.Truncate(time.Second))
			metrics.TenantEvictTotal.Inc()
			metrics.ActiveTenants.Dec()
		}
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	if c.maxEntries > 0 && count > c.maxEntries {
		type kv struct {
			key string
			at  int64
		}
		var all []kv
		c.m.Range(func(key, value any) bool {
			ent := value.(*entry)
			all = append(all, kv{key: key.(string), at: atomic.LoadInt64(&ent.lastSeen)})
			return true
		})
		sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
		for i := 0; i < count-c.maxEntries && i < len(all); i++ {
			if _, ok := c.m.Load(all[i].key); ok {
				c.m.Delete(all[i].key)
				zap.S().Debugw("tenant evicted (LRU pressure)", "key", all[i].key)
				metrics.TenantEvictTotal.Inc()
				metrics.ActiveTenants.Dec()
			}
		}
	}
}
