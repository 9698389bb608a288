package cache

import (
	"sort"

	gocache "github.com/patrickmn/go-cache"
	"github.com/ppiankov/nifrel/internal/model"
)

// MemoryStore keeps identifiers in memory without expiry
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves the identifier stored for ref
func (s *MemoryStore) Get(ref string) (int64, bool) {
	if val, found := s.cache.Get(Key(ref)); found {
		return val.(int64), true
	}
	return 0, false
}

// Set stores id for ref, replacing any previous value
func (s *MemoryStore) Set(ref string, id int64) {
	s.cache.Set(Key(ref), id, gocache.NoExpiration)
}

// Delete removes ref from the store
func (s *MemoryStore) Delete(ref string) {
	s.cache.Delete(Key(ref))
}

// Items returns all entries sorted by reference
func (s *MemoryStore) Items() []model.CacheEntry {
	items := s.cache.Items()
	entries := make([]model.CacheEntry, 0, len(items))
	for ref, item := range items {
		entries = append(entries, model.CacheEntry{Reference: ref, ID: item.Object.(int64)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Reference < entries[j].Reference
	})
	return entries
}

// Len returns the number of stored references
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

// Clear removes every entry
func (s *MemoryStore) Clear() {
	s.cache.Flush()
}
