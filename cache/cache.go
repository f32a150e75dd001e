// Package cache holds derived layouts so a struct text is parsed once and
// accessed many times. Entries are keyed by a BLAKE2b fingerprint of the
// text and the parse options.
package cache

import (
	"encoding/hex"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/wippyai/bitstruct/schema"
)

// Key identifies a struct text and the options it was parsed with.
type Key [blake2b.Size256]byte

// String returns the key in hex.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Short returns the first eight bytes of the key in hex.
func (k Key) Short() string {
	return hex.EncodeToString(k[:8])
}

// Fingerprint returns the cache key for text parsed with opts.
func Fingerprint(text string, opts *schema.Options) Key {
	var o schema.Options
	if opts != nil {
		o = *opts
	}
	suffix := []byte{0, 0, byte(o.Mode)}
	if o.Lenient {
		suffix[1] = 1
	}
	h, _ := blake2b.New256(nil)
	h.Write([]byte(text))
	h.Write(suffix)
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Stats reports cache activity.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Cache maps fingerprints to layouts. It is safe for concurrent use.
// Parse failures are not cached.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*schema.Layout
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[Key]*schema.Layout),
	}
}

// Layout returns the layout of text, parsing it on first use.
func (c *Cache) Layout(text string, opts *schema.Options) (*schema.Layout, error) {
	key := Fingerprint(text, opts)

	c.mu.RLock()
	l, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		Logger().Debug("layout cache hit", zap.String("key", key.Short()), zap.String("struct", l.Name))
		return l, nil
	}

	c.misses.Add(1)
	l, err := schema.ParseWithOptions(text, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		l = existing
	} else {
		c.entries[key] = l
	}
	c.mu.Unlock()

	Logger().Debug("layout cache miss", zap.String("key", key.Short()), zap.String("struct", l.Name), zap.Int("size", l.Size))
	return l, nil
}

// Forget drops the entry for text parsed with opts.
func (c *Cache) Forget(text string, opts *schema.Options) bool {
	key := Fingerprint(text, opts)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[Key]*schema.Layout)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}
