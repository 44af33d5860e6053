package sample

import (
	"context"
	"math/rand"
	"sync"

	"live-service/internal/models"
)

// maxPoolSize bounds lazy hydration so a huge table cannot blow up the
// in-memory pool.
const maxPoolSize = 8000

// Loader hydrates a pool from storage, typically "ids of all non-banned
// rows, most recent first, capped".
type Loader func(ctx context.Context) ([]string, error)

// pool is a set with O(1) add/remove and O(k) uniform sampling.
type pool struct {
	ids   []string
	index map[string]int
}

func newPool(ids []string) *pool {
	if len(ids) > maxPoolSize {
		ids = ids[:maxPoolSize]
	}
	p := &pool{ids: make([]string, 0, len(ids)), index: make(map[string]int, len(ids))}
	for _, id := range ids {
		p.add(id)
	}
	return p
}

func (p *pool) add(id string) {
	if _, ok := p.index[id]; ok {
		return
	}
	p.index[id] = len(p.ids)
	p.ids = append(p.ids, id)
}

func (p *pool) remove(id string) {
	i, ok := p.index[id]
	if !ok {
		return
	}
	last := len(p.ids) - 1
	p.ids[i] = p.ids[last]
	p.index[p.ids[i]] = i
	p.ids = p.ids[:last]
	delete(p.index, id)
}

// Cache maintains a pool of eligible entity ids per content kind so random
// sample reads never re-scan storage. Mutations keep each pool consistent
// with eligibility; sampled ids are always a valid snapshot. Removals that
// land before a pool is hydrated are tombstoned and subtracted when the
// loader result is installed, so a stale storage read cannot resurrect a
// removed id.
type Cache struct {
	mu         sync.Mutex
	pools      map[models.ContentKind]*pool
	tombstones map[models.ContentKind]map[string]struct{}
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{
		pools:      make(map[models.ContentKind]*pool),
		tombstones: make(map[models.ContentKind]map[string]struct{}),
	}
}

// SampleIDs returns up to limit ids drawn uniformly without replacement.
// The pool is hydrated via loader on first use per kind.
func (c *Cache) SampleIDs(ctx context.Context, kind models.ContentKind, limit int, loader Loader) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	c.mu.Lock()
	p, ok := c.pools[kind]
	c.mu.Unlock()

	if !ok {
		ids, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// Another sampler may have hydrated while the loader ran.
		if existing, raced := c.pools[kind]; raced {
			p = existing
		} else {
			p = c.installLocked(kind, ids)
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(p.ids)
	if limit > n {
		limit = n
	}

	// Partial Fisher-Yates over a scratch copy; the pool order is not
	// touched so the index map stays valid.
	scratch := make([]string, n)
	copy(scratch, p.ids)
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		j := i + rand.Intn(n-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
		out = append(out, scratch[i])
	}
	return out, nil
}

// Add marks an id eligible. Before hydration it only clears any tombstone
// for the id; the loader is authoritative for the initial pool.
func (c *Cache) Add(kind models.ContentKind, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pools[kind]
	if !ok {
		delete(c.tombstones[kind], id)
		return
	}
	if len(p.ids) < maxPoolSize {
		p.add(id)
	}
}

// Remove marks an id ineligible. While the kind is unhydrated the id is
// tombstoned instead, which also covers removals racing an in-flight
// loader.
func (c *Cache) Remove(kind models.ContentKind, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pools[kind]; ok {
		p.remove(id)
		return
	}
	ts, ok := c.tombstones[kind]
	if !ok {
		ts = make(map[string]struct{})
		c.tombstones[kind] = ts
	}
	ts[id] = struct{}{}
}

// ReplaceAll seeds the pool wholesale, e.g. after a bulk import.
func (c *Cache) ReplaceAll(kind models.ContentKind, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installLocked(kind, ids)
}

// installLocked builds the pool, subtracting ids removed while the kind
// was unhydrated.
func (c *Cache) installLocked(kind models.ContentKind, ids []string) *pool {
	p := newPool(ids)
	for id := range c.tombstones[kind] {
		p.remove(id)
	}
	delete(c.tombstones, kind)
	c.pools[kind] = p
	return p
}

// Invalidate drops a pool so the next sample re-hydrates from storage.
func (c *Cache) Invalidate(kind models.ContentKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pools, kind)
}
