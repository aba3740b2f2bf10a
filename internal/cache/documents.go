// Package cache keeps parsed schema documents so repeated comparisons of the
// same content skip the parser.
package cache

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	expirable "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Stats reports cache effectiveness.
type Stats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Documents is an LRU of parsed documents keyed by a hash of format and
// content. Cached documents are shared between callers and must be treated
// as read-only.
type Documents[D any] struct {
	lru       *expirable.LRU[string, D]
	maxSize   int
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	// group shares one parse, successful or not, between concurrent callers.
	group singleflight.Group
}

// NewDocuments creates a cache holding at most maxSize documents for ttl.
// A zero ttl disables expiry.
func NewDocuments[D any](maxSize int, ttl time.Duration) *Documents[D] {
	if maxSize <= 0 {
		maxSize = 256
	}
	c := &Documents[D]{maxSize: maxSize}
	c.lru = expirable.NewLRU[string, D](maxSize, func(string, D) {
		c.evictions.Add(1)
	}, ttl)
	return c
}

// Key derives the cache key for a document.
func Key(format, content string) string {
	h := xxhash.New()
	_, _ = h.WriteString(format)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(content)
	return strconv.FormatUint(h.Sum64(), 16)
}

// GetOrParse returns the cached document for content or parses and stores it.
// Parse failures are not cached.
func (c *Documents[D]) GetOrParse(format, content string, parse func(string) (D, error)) (D, error) {
	key := Key(format, content)
	if doc, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return doc, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if doc, ok := c.lru.Get(key); ok {
			c.hits.Add(1)
			return doc, nil
		}
		c.misses.Add(1)

		doc, err := parse(content)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, doc)
		return doc, nil
	})
	doc, _ := v.(D)
	if err != nil {
		var zero D
		return zero, err
	}
	return doc, nil
}

// Len returns the number of cached documents.
func (c *Documents[D]) Len() int {
	return c.lru.Len()
}

// Purge drops every cached document.
func (c *Documents[D]) Purge() {
	c.lru.Purge()
}

func (c *Documents[D]) Stats() Stats {
	return Stats{
		Size:      c.lru.Len(),
		MaxSize:   c.maxSize,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
