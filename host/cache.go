package host

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/edwingeng/deque"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/wintitle/lang"
	"github.com/ardnew/wintitle/log"
)

// DefaultCacheLimit is the capacity used when NewCache is given a
// non-positive limit.
const DefaultCacheLimit = 128

// Cache memoizes [lang.Compile] results, including failures, keyed by
// source text. Every entry is compiled with the same options; the
// fingerprint names that option set and is mixed into the key so caches
// built with different options never share keys. When full, the oldest
// entry is evicted. A Cache is safe for concurrent use, and concurrent
// requests for the same source compile it once.
type Cache struct {
	opts   []lang.Option
	seed   uint64
	limit  int
	logger log.Logger

	mu      sync.Mutex
	entries map[uint64]*cacheEntry
	order   deque.Deque // keys, oldest first

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	once     sync.Once
	source   string
	compiled *lang.Compiled
	err      error
}

// NewCache returns an empty cache holding at most limit entries.
func NewCache(limit int, fingerprint string, opts ...lang.Option) *Cache {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}

	return &Cache{
		opts:    opts,
		seed:    xxh3.HashString(fingerprint),
		limit:   limit,
		entries: make(map[uint64]*cacheEntry),
		order:   deque.NewDeque(),
	}
}

// WithLogger sets the logger used for cache diagnostics and returns c.
func (c *Cache) WithLogger(logger log.Logger) *Cache {
	c.logger = logger

	return c
}

func (c *Cache) key(source string) uint64 {
	return xxh3.HashString(source) ^ c.seed
}

// Get returns the compiled form of source.
func (c *Cache) Get(source string) (*lang.Compiled, error) {
	k := c.key(source)

	c.mu.Lock()

	e, hit := c.entries[k]
	if hit && e.source != source {
		c.mu.Unlock()
		c.logger.Debug("cache key collision",
			slog.String("key", strconv.FormatUint(k, 36)))

		return lang.Compile(source, c.opts...)
	}

	if !hit {
		e = &cacheEntry{source: source}
		c.entries[k] = e
		c.order.PushBack(k)

		for c.order.Len() > c.limit {
			old, _ := c.order.PopFront().(uint64)
			delete(c.entries, old)
		}
	}

	c.mu.Unlock()

	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	c.logger.Trace("cache lookup",
		slog.String("key", strconv.FormatUint(k, 36)),
		slog.Bool("hit", hit),
	)

	e.once.Do(func() {
		e.compiled, e.err = lang.Compile(source, c.opts...)
	})

	return e.compiled, e.err
}

// Read compiles the full contents of r through the cache.
func (c *Cache) Read(ctx context.Context, r io.Reader) (*lang.Compiled, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	c.logger.TraceContext(ctx, "read input", slog.Int("bytes", len(data)))

	return c.Get(string(data))
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns the lookup counters since the cache was created.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uint64]*cacheEntry)
	c.order = deque.NewDeque()
}
