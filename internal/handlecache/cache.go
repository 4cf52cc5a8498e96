package handlecache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/rs/zerolog"

	"github.com/1broseidon/winprobe/internal/platform"
)

// DefaultCapacity bounds a Cache built without WithCapacity.
const DefaultCapacity = 256

type options struct {
	capacity int
	logger   zerolog.Logger
}

// Option configures a Cache.
type Option func(*options)

// WithCapacity sets the maximum number of cached keys. Must be > 0.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets the logger used for cache decisions (debug level).
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Cache is a shared, bounded handle cache. All methods are safe for
// concurrent use; each Resolve runs as one critical section covering the
// lookup, the liveness check, the finder call and the insertion.
type Cache struct {
	mu       sync.Mutex
	entries  *simplelru.LRU[platform.Query, platform.Handle]
	capacity int
	finder   platform.Finder
	live     platform.LivenessChecker
	logger   zerolog.Logger
	counters counters
}

// New builds a Cache in front of finder, validating entries with live.
func New(finder platform.Finder, live platform.LivenessChecker, opts ...Option) (*Cache, error) {
	if finder == nil || live == nil {
		return nil, errors.New("handlecache: finder and liveness checker are required")
	}
	o := options{
		capacity: DefaultCapacity,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity <= 0 {
		return nil, fmt.Errorf("handlecache: capacity must be > 0, got %d", o.capacity)
	}

	entries, err := simplelru.NewLRU[platform.Query, platform.Handle](o.capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU: %w", err)
	}

	return &Cache{
		entries:  entries,
		capacity: o.capacity,
		finder:   finder,
		live:     live,
		logger:   o.logger.With().Str("component", "handlecache").Logger(),
	}, nil
}

// NewForBackend builds a Cache that uses b as both finder and liveness checker.
func NewForBackend(b platform.Backend, opts ...Option) (*Cache, error) {
	return New(b, b, opts...)
}

// Resolve returns a live handle for (class, title), asking the finder only
// when no live cached handle exists. See the package documentation for the
// stale-match behavior.
func (c *Cache) Resolve(class, title string) (platform.Handle, error) {
	return c.ResolveQuery(platform.Query{Class: class, Title: title})
}

// ResolveQuery is Resolve for a prepared key.
func (c *Cache) ResolveQuery(q platform.Query) (platform.Handle, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.entries.Get(q); ok {
		if c.live.WindowExists(h) {
			c.counters.hits++
			c.logger.Debug().Str("class", q.Class).Str("title", q.Title).Stringer("handle", h).Msg("cache hit")
			return h, nil
		}
		c.entries.Remove(q)
		c.counters.stale++
		c.logger.Debug().Str("class", q.Class).Str("title", q.Title).Stringer("handle", h).Msg("cached window is gone, resolving again")
	}

	c.counters.misses++
	h, err := c.finder.FindWindow(q.Class, q.Title)
	if err != nil {
		return 0, err
	}
	c.insertLocked(q, h)
	return h, nil
}

func (c *Cache) insertLocked(q platform.Query, h platform.Handle) {
	var victim platform.Query
	if !c.entries.Contains(q) && c.entries.Len() >= c.capacity {
		victim, _, _ = c.entries.GetOldest()
	}
	if c.entries.Add(q, h) {
		c.counters.evictions++
		c.logger.Debug().Str("class", victim.Class).Str("title", victim.Title).Msg("evicted least recently used entry")
	}
	c.logger.Debug().Str("class", q.Class).Str("title", q.Title).Stringer("handle", h).Msg("cached resolved window")
}

// Peek returns the cached handle for q without a liveness check and without
// touching recency.
func (c *Cache) Peek(q platform.Query) (platform.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Peek(q)
}

// Prune drops every entry whose handle is no longer live and returns how many
// were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, q := range c.entries.Keys() {
		h, ok := c.entries.Peek(q)
		if !ok || c.live.WindowExists(h) {
			continue
		}
		c.entries.Remove(q)
		removed++
	}
	c.counters.pruned += uint64(removed)
	if removed > 0 {
		c.logger.Debug().Int("removed", removed).Msg("pruned dead entries")
	}
	return removed
}

// Purge empties the cache. Counters are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Capacity returns the maximum number of cached keys.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters.snapshot(c.entries.Len(), c.capacity)
}
