// Package viewcache memoizes layout results per view key and invalidates
// them wholesale when the event collection changes.
package viewcache

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Tinnci/merkuro-github-fork/layout"
	"github.com/Tinnci/merkuro-github-fork/model"
	"github.com/Tinnci/merkuro-github-fork/source"
)

// Key identifies one memoized layout result.
type Key struct {
	Date         model.Date
	PeriodLength int
	Kind         layout.Kind
	Span         int    // days covered by the request
	Location     string // zone name of time grids, empty for the occurrences' own
}

// LocationName returns the Key.Location value for loc.
func LocationName(loc *time.Location) string {
	if loc == nil {
		return ""
	}
	return loc.String()
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d/%d/%s", k.Kind, k.Date, k.PeriodLength, k.Span, k.Location)
}

// entry represents a cached layout result
type entry struct {
	value      any
	generation uint64
	accessedAt atomic.Int64 // value of Cache.tick at last access
}

// Config holds configuration for the view cache
type Config struct {
	// Debounce delays the recompute notification after an invalidation.
	// Invalidations arriving while one is pending are coalesced into it.
	Debounce time.Duration
	// MaxEntries triggers pruning of stale and then least recently used
	// entries once exceeded.
	MaxEntries int
	// Logger receives debug output. If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig provides sensible defaults for interactive views
var DefaultConfig = Config{
	Debounce:   50 * time.Millisecond,
	MaxEntries: 1000,
}

// Cache is a generation-counter cache. Entries carry the generation they were
// stored under; bumping the generation invalidates all of them at once
// without touching the map. Entries never expire on their own.
//
// All methods are safe for concurrent use.
type Cache struct {
	mu          sync.RWMutex
	entries     map[Key]*entry
	generation  uint64
	pending     *time.Timer
	listeners   map[int]func(generation uint64)
	nextID      int
	unsubscribe []func()
	closed      bool

	config Config
	logger *slog.Logger

	tick       atomic.Int64
	hits       atomic.Uint64
	misses     atomic.Uint64
	recomputes atomic.Uint64
}

// New creates a new view cache with the given configuration
func New(config Config) *Cache {
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig.Debounce
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultConfig.MaxEntries
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		entries:   make(map[Key]*entry),
		listeners: make(map[int]func(uint64)),
		config:    config,
		logger:    config.Logger,
	}
}

// Get retrieves a result stored under the current generation.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	current := c.generation
	c.mu.RUnlock()

	if !ok || e.generation != current {
		c.misses.Add(1)
		return nil, false
	}
	e.accessedAt.Store(c.tick.Add(1))
	c.hits.Add(1)
	return e.value, true
}

// Put stores value under the current generation.
func (c *Cache) Put(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, value, c.generation)
}

func (c *Cache) putLocked(key Key, value any, generation uint64) {
	if c.closed || generation != c.generation {
		return
	}
	e := &entry{value: value, generation: generation}
	e.accessedAt.Store(c.tick.Add(1))
	c.entries[key] = e

	if len(c.entries) > c.config.MaxEntries {
		c.prune()
	}
}

// GetOrCompute returns the cached value for key or computes and stores it.
// compute runs without the lock held. A result computed while the cache was
// invalidated is returned but not stored.
func (c *Cache) GetOrCompute(key Key, compute func() any) any {
	if v, ok := c.Get(key); ok {
		return v
	}

	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()

	v := compute()

	c.mu.Lock()
	c.putLocked(key, v, generation)
	c.mu.Unlock()
	return v
}

// Invalidate discards every cached result by bumping the generation, and
// schedules a recompute notification unless one is already pending.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.generation++
	if c.pending != nil {
		return
	}
	c.pending = time.AfterFunc(c.config.Debounce, c.fire)
	c.logger.Debug("view cache invalidated", "generation", c.generation, "debounce", c.config.Debounce)
}

func (c *Cache) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	generation := c.generation
	listeners := make([]func(uint64), 0, len(c.listeners))
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, c.listeners[id])
	}
	c.mu.Unlock()

	c.recomputes.Add(1)
	c.logger.Debug("view cache recompute", "generation", generation, "listeners", len(listeners))
	for _, fn := range listeners {
		fn(generation)
	}
}

// OnRecompute registers fn to run once per debounced invalidation burst.
// It returns a function that removes fn.
func (c *Cache) OnRecompute(fn func(generation uint64)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Watch invalidates the cache on every change notification of src.
func (c *Cache) Watch(src source.Source) {
	cancel := src.Subscribe(func(change source.Change) {
		c.logger.Debug("source changed", "kind", change.Kind, "uids", len(change.UIDs))
		c.Invalidate()
	})

	c.mu.Lock()
	c.unsubscribe = append(c.unsubscribe, cancel)
	c.mu.Unlock()
}

// Generation returns the current generation.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// prune removes stale entries and then least recently used ones until the
// cache is back under its limit. The caller holds the write lock.
func (c *Cache) prune() {
	for key, e := range c.entries {
		if e.generation != c.generation {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.config.MaxEntries {
		return
	}

	type keyAccess struct {
		key        Key
		accessedAt int64
	}
	list := make([]keyAccess, 0, len(c.entries))
	for key, e := range c.entries {
		list = append(list, keyAccess{key: key, accessedAt: e.accessedAt.Load()})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].accessedAt < list[j].accessedAt })

	excess := len(c.entries) - c.config.MaxEntries
	for i := 0; i < excess; i++ {
		delete(c.entries, list[i].key)
	}
}

// Close stops any pending recompute, unsubscribes from watched sources and
// clears the cache. The cache stays usable for reads but stores nothing.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.entries = make(map[Key]*entry)
	c.closed = true
	c.mu.Unlock()

	for _, cancel := range unsubscribe {
		cancel()
	}
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stale := 0
	for _, e := range c.entries {
		if e.generation != c.generation {
			stale++
		}
	}
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Recomputes:   c.recomputes.Load(),
		Generation:   c.generation,
		TotalEntries: len(c.entries),
		StaleEntries: stale,
	}
}

// Stats provides information about cache performance
type Stats struct {
	Hits         uint64
	Misses       uint64
	Recomputes   uint64
	Generation   uint64
	TotalEntries int
	StaleEntries int
}

// ActiveEntries is the number of entries valid under the current generation.
func (s Stats) ActiveEntries() int {
	return s.TotalEntries - s.StaleEntries
}
