package cache

import (
	"errors"
	"strings"

	"github.com/ppiankov/nifrel/internal/model"
)

// ErrPersistence is returned when the cache file cannot be read or written
var ErrPersistence = errors.New("cache persistence failure")

// Store defines the interface for an identifier store
type Store interface {
	Get(ref string) (int64, bool)
	Set(ref string, id int64)
	Delete(ref string)
	Items() []model.CacheEntry
	Len() int
	Clear()
}

// Key normalizes a reference into a store key
func Key(ref string) string {
	return strings.TrimSpace(ref)
}
