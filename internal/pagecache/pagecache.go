// Package pagecache holds complete result lists under a key and hands them
// out in fixed-size pages, so a consumer never has to receive a large list in
// one transfer.
package pagecache

import (
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrInvalidPageSize is returned when a page of zero or negative size is requested.
var ErrInvalidPageSize = errors.New("page size must be positive")

type (
	// Page is a contiguous run of a stored result set. Next is nil when the
	// page reaches the end of the set.
	Page[T any] struct {
		Items []T
		Next  *Token
	}

	// Sink receives one page from Get.
	Sink[T any] func(items []T, next *Token)

	// Cache is a keyed pagination cache. It is safe for concurrent use.
	Cache[T any] struct {
		mu     sync.Mutex
		sets   *lru.Cache
		logger *zap.Logger
		// removing is set while Remove runs, the lru reports removals
		// through OnEvicted too.
		removing bool
	}
)

// New creates a cache keeping at most maxEntries result sets; the least
// recently used set is dropped first. maxEntries of 0 keeps every set.
func New[T any](maxEntries int, logger *zap.Logger) *Cache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache[T]{
		sets:   lru.New(maxEntries),
		logger: logger,
	}
	c.sets.OnEvicted = c.onEvicted
	return c
}

// Put stores records under key, replacing whatever was stored there before.
// The cache keeps its own copy of the slice.
func (c *Cache[T]) Put(key string, records []T) {
	set := make([]T, len(records))
	copy(set, records)

	c.mu.Lock()
	c.sets.Add(key, set)
	c.mu.Unlock()
	c.logger.Debug("result set stored", zap.String("key", key), zap.Int("len", len(set)))
}

// Get passes the page [start, start+pageSize) of the set stored under key to
// sink, together with a token for the following page if there is one. A
// start beyond the end gives an empty page without a token. An unknown key is
// treated as an empty set.
func (c *Cache[T]) Get(key string, start, pageSize int, sink Sink[T]) error {
	if pageSize <= 0 {
		return errors.Wrapf(ErrInvalidPageSize, "got %d", pageSize)
	}
	if start < 0 {
		start = 0
	}

	c.mu.Lock()
	var set []T
	if v, ok := c.sets.Get(key); ok {
		set = v.([]T)
	}
	c.mu.Unlock()

	n := len(set)
	if start >= n {
		sink([]T{}, nil)
		return nil
	}

	end := n
	if pageSize < n-start {
		end = start + pageSize
	}
	items := make([]T, end-start)
	copy(items, set[start:end])

	var next *Token
	if end < n {
		next = &Token{Key: key, Start: end}
	}
	sink(items, next)
	return nil
}

// Fetch is Get returning the page instead of calling a sink.
func (c *Cache[T]) Fetch(key string, start, pageSize int) (Page[T], error) {
	var p Page[T]
	err := c.Get(key, start, pageSize, func(items []T, next *Token) {
		p.Items = items
		p.Next = next
	})
	return p, err
}

// Remove drops the set stored under key.
func (c *Cache[T]) Remove(key string) {
	c.mu.Lock()
	c.removing = true
	c.sets.Remove(key)
	c.removing = false
	c.mu.Unlock()
}

// Has reports whether a set is stored under key.
func (c *Cache[T]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sets.Get(key)
	return ok
}

// Len returns the number of stored sets.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets.Len()
}

// onEvicted runs under c.mu, called by the lru.
func (c *Cache[T]) onEvicted(key lru.Key, v interface{}) {
	msg := "result set evicted"
	if c.removing {
		msg = "result set removed"
	}
	c.logger.Debug(msg, zap.Any("key", key), zap.Int("len", len(v.([]T))))
}
