package services

import (
	"context"
	"sync"

	"case_law_app_go/models"
)

// ResultSetBus signals that previously fetched case lists are stale.
// Every successful write bumps the generation and notifies subscribers.
type ResultSetBus struct {
	mu         sync.Mutex
	generation uint64
	nextID     int
	subs       map[int]chan uint64
}

// NewResultSetBus creates a bus at generation zero
func NewResultSetBus() *ResultSetBus {
	return &ResultSetBus{subs: make(map[int]chan uint64)}
}

// Generation returns the current result-set generation
func (b *ResultSetBus) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// Publish bumps the generation and notifies every subscriber without
// blocking. Notifications coalesce: a slow subscriber sees only the latest
// generation.
func (b *ResultSetBus) Publish() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation++
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- b.generation:
		default:
		}
	}
	resultSetGeneration.Set(float64(b.generation))
	return b.generation
}

// Subscribe returns a channel of generations and a cancel func that closes it
func (b *ResultSetBus) Subscribe() (<-chan uint64, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan uint64, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// DefaultCacheEntries bounds the case list cache when no size is given
const DefaultCacheEntries = 256

type cacheEntry struct {
	generation uint64
	cases      []models.Case
	lastUsed   uint64
}

// CaseQueryCache memoizes ListCases results per filter set until the next
// invalidation on the bus. At most max filter sets are kept; the least
// recently used is evicted first.
type CaseQueryCache struct {
	query *CaseQueryService
	bus   *ResultSetBus

	mu      sync.Mutex
	max     int
	tick    uint64
	entries map[models.SearchFilters]*cacheEntry
}

// NewCaseQueryCache wraps a query service, keeping at most max filter sets
func NewCaseQueryCache(query *CaseQueryService, bus *ResultSetBus, max int) *CaseQueryCache {
	if max <= 0 {
		max = DefaultCacheEntries
	}
	return &CaseQueryCache{
		query:   query,
		bus:     bus,
		max:     max,
		entries: make(map[models.SearchFilters]*cacheEntry),
	}
}

// ListCases serves from cache when the entry is from the current generation
func (c *CaseQueryCache) ListCases(ctx context.Context, filters *models.SearchFilters) ([]models.Case, error) {
	key := cacheKey(filters)
	gen := c.bus.Generation()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.generation == gen {
		c.tick++
		e.lastUsed = c.tick
		cases := cloneCases(e.cases)
		c.mu.Unlock()
		return cases, nil
	}
	c.mu.Unlock()

	cases, err := c.query.ListCases(ctx, filters)
	if err != nil {
		return nil, err
	}

	// A write may have landed while we were reading; only cache if not
	c.mu.Lock()
	if c.bus.Generation() == gen {
		c.store(key, gen, cases)
	}
	c.mu.Unlock()

	return cases, nil
}

// store must be called with mu held
func (c *CaseQueryCache) store(key models.SearchFilters, gen uint64, cases []models.Case) {
	c.tick++
	if e, ok := c.entries[key]; ok {
		e.generation, e.cases, e.lastUsed = gen, cloneCases(cases), c.tick
		return
	}

	if len(c.entries) >= c.max {
		var oldestKey models.SearchFilters
		var oldest *cacheEntry
		for k, e := range c.entries {
			if oldest == nil || e.lastUsed < oldest.lastUsed {
				oldestKey, oldest = k, e
			}
		}
		delete(c.entries, oldestKey)
		caseCacheEvictions.Inc()
	}

	c.entries[key] = &cacheEntry{generation: gen, cases: cloneCases(cases), lastUsed: c.tick}
}

// Len returns the number of cached filter sets
func (c *CaseQueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Run drops all entries whenever the bus publishes, until ctx is done
func (c *CaseQueryCache) Run(ctx context.Context) {
	ch, cancel := c.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			c.mu.Lock()
			clear(c.entries)
			c.mu.Unlock()
		}
	}
}

func cacheKey(filters *models.SearchFilters) models.SearchFilters {
	if filters == nil {
		return models.SearchFilters{}
	}
	return *filters
}

func cloneCases(cases []models.Case) []models.Case {
	out := make([]models.Case, len(cases))
	copy(out, cases)
	return out
}
