package model

// UnknownID is the Wiki ID recorded when no identifier is known for a reference.
// It is cached like any other value (negative caching).
const UnknownID int64 = -1

// CacheEntry maps a resource reference to its Wiki ID
type CacheEntry struct {
	Reference string `json:"reference" yaml:"reference"` // Knowledge-base resource IRI
	ID        int64  `json:"id" yaml:"id"`               // Wiki page ID or UnknownID
}

// Known reports whether the entry carries a real identifier
func (e CacheEntry) Known() bool {
	return e.ID != UnknownID
}
