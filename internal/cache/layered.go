package cache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ppiankov/nifrel/internal/model"
)

// IDCache is the identifier cache: a memory layer optionally backed by a Turtle file.
// The file is read once at Open and written only by Flush, unless AutoFlush is set.
type IDCache struct {
	memory    Store
	file      *TurtleFile // nil for memory-only caches
	logger    *slog.Logger
	autoFlush bool

	mu    sync.Mutex // serializes Flush and guards dirty
	dirty bool
}

// Option configures an IDCache
type Option func(*IDCache)

// WithAutoFlush writes the file after every newly stored mapping
func WithAutoFlush(enabled bool) Option {
	return func(c *IDCache) {
		c.autoFlush = enabled
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *IDCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewMemoryCache creates a cache with no persistence
func NewMemoryCache(opts ...Option) *IDCache {
	c := &IDCache{
		memory: NewMemoryStore(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open creates a cache persisted at path, loading existing entries if the file exists.
// An empty path yields a memory-only cache.
func Open(path string, opts ...Option) (*IDCache, error) {
	c := NewMemoryCache(opts...)
	if path == "" {
		return c, nil
	}

	c.file = NewTurtleFile(path)
	entries, err := c.file.Load()
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	for _, e := range entries {
		c.memory.Set(e.Reference, e.ID)
	}

	c.logger.Debug("identifier cache opened", "path", path, "entries", len(entries))
	return c, nil
}

// Lookup returns the cached identifier for ref
func (c *IDCache) Lookup(ref string) (int64, bool) {
	return c.memory.Get(ref)
}

// Store records id for ref, overwriting any previous value
func (c *IDCache) Store(ref string, id int64) {
	c.memory.Set(ref, id)

	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()

	if c.autoFlush && c.file != nil {
		// Failures are logged inside Flush and the entry stays in memory
		_ = c.Flush()
	}
}

// Flush writes every entry to the backing file, replacing its contents.
// On failure the in-memory state is kept and ErrPersistence is returned.
func (c *IDCache) Flush() error {
	if c.file == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.memory.Items()
	if err := c.file.Save(entries); err != nil {
		c.logger.Error("flush identifier cache", "path", c.file.Path(), "entries", len(entries), "error", err)
		return err
	}

	c.dirty = false
	c.logger.Debug("identifier cache flushed", "path", c.file.Path(), "entries", len(entries))
	return nil
}

// Dirty reports whether there are mappings not yet flushed
func (c *IDCache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Path returns the backing file path, or "" for memory-only caches
func (c *IDCache) Path() string {
	if c.file == nil {
		return ""
	}
	return c.file.Path()
}

// Len returns the number of cached references
func (c *IDCache) Len() int {
	return c.memory.Len()
}

// Entries returns all cached entries sorted by reference
func (c *IDCache) Entries() []model.CacheEntry {
	return c.memory.Items()
}

// Forget removes ref from memory; the file changes on the next Flush
func (c *IDCache) Forget(ref string) {
	c.memory.Delete(ref)

	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}
