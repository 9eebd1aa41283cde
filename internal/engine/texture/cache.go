package texture

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/logger"
)

// KeyFunc maps a texture path to its cache key.
type KeyFunc func(path string) string

// BaseNameKey keys textures by file name only. Two different files with the
// same name in different directories alias to one entry.
func BaseNameKey(path string) string {
	return filepath.Base(path)
}

// PathKey keys textures by their cleaned full path.
func PathKey(path string) string {
	return filepath.Clean(path)
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithKeyFunc replaces the default BaseNameKey.
func WithKeyFunc(fn KeyFunc) CacheOption {
	return func(c *Cache) {
		c.keyFunc = fn
	}
}

// Cache shares one Texture per key. Each key is decoded at most once for the
// lifetime of the entry, including under concurrent Load calls.
// Entries live until Close; there is no eviction.
type Cache struct {
	device  gfx.Device
	keyFunc KeyFunc

	mu      sync.Mutex
	entries map[string]*Texture
	loads   singleflight.Group

	// Stats
	hits   int
	misses int
}

// NewCache creates an empty cache that allocates textures on dev.
func NewCache(dev gfx.Device, opts ...CacheOption) *Cache {
	c := &Cache{
		device:  dev,
		keyFunc: BaseNameKey,
		entries: make(map[string]*Texture),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the shared texture for path, decoding it on the first request.
// The caller receives its own reference and must Release it when done.
// Failed decodes are cached too, as zero-handle textures.
func (c *Cache) Load(path string, srgb bool) *Texture {
	key := c.keyFunc(path)

	if t, ok := c.lookup(key); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return t.Acquire()
	}

	decoded := false
	v, _, _ := c.loads.Do(key, func() (any, error) {
		// A previous flight may have finished between lookup and Do
		if t, ok := c.lookup(key); ok {
			return t, nil
		}
		decoded = true
		t := Load(c.device, path, srgb)

		c.mu.Lock()
		c.entries[key] = t
		c.misses++
		c.mu.Unlock()

		logger.Debug("texture cache miss", zap.String("key", key), zap.String("path", path))
		return t, nil
	})

	if !decoded {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return v.(*Texture).Acquire()
}

func (c *Cache) lookup(key string) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[key]
	return t, ok
}

// Get returns the cached texture for key without adding a reference.
func (c *Cache) Get(key string) (*Texture, bool) {
	return c.lookup(key)
}

// Key returns the cache key used for path.
func (c *Cache) Key(path string) string {
	return c.keyFunc(path)
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Close drops the cache's reference to every entry and empties it. Textures
// still referenced by materials stay alive until those owners release them.
func (c *Cache) Close() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*Texture)
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()

	for _, t := range entries {
		t.Release()
	}
}
