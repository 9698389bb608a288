package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityIndex_InsertionOrder(t *testing.T) {
	idx := NewEntityIndex()
	idx.Put(EntitySpan{Text: "Paris", Begin: 10, End: 15})
	idx.Put(EntitySpan{Text: "Marie", Begin: 0, End: 5})

	assert.Equal(t, []string{"Paris", "Marie"}, idx.Keys())
	assert.Equal(t, 2, idx.Len())
}

func TestEntityIndex_OverwriteKeepsPosition(t *testing.T) {
	idx := NewEntityIndex()
	idx.Put(EntitySpan{Text: "Anna", Begin: 0, End: 4})
	idx.Put(EntitySpan{Text: "Ben", Begin: 9, End: 12})
	idx.Put(EntitySpan{Text: "Anna", Begin: 17, End: 21})

	assert.Equal(t, []string{"Anna", "Ben"}, idx.Keys())
	span, ok := idx.Get("Anna")
	assert.True(t, ok)
	assert.Equal(t, 17, span.Begin)
	assert.Equal(t, []EntitySpan{
		{Text: "Anna", Begin: 17, End: 21},
		{Text: "Ben", Begin: 9, End: 12},
	}, idx.Spans())
}

func TestEntityIndex_KeysIsACopy(t *testing.T) {
	idx := NewEntityIndex()
	idx.Put(EntitySpan{Text: "Anna"})
	keys := idx.Keys()
	keys[0] = "changed"
	assert.Equal(t, []string{"Anna"}, idx.Keys())
}

func TestEntityIndex_NilLen(t *testing.T) {
	var idx *EntityIndex
	assert.Equal(t, 0, idx.Len())
}

func TestCacheEntry_Known(t *testing.T) {
	assert.True(t, CacheEntry{Reference: "http://dbpedia.org/resource/Berlin", ID: 3354}.Known())
	assert.False(t, CacheEntry{Reference: "http://dbpedia.org/resource/Nowhere", ID: UnknownID}.Known())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "https://dbpedia.org/sparql", cfg.Endpoint.URL)
	assert.Equal(t, "dbpediaids.ttl", cfg.Cache.Path)
	assert.False(t, cfg.Cache.AutoFlush)
	assert.Equal(t, "turtle", cfg.Extract.OutputFormat)
	assert.Equal(t, DefaultRelations(), cfg.Extract.Relations)
	assert.Greater(t, cfg.Concurrency.Workers, 0)
}
