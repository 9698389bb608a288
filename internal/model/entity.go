package model

// EntitySpan is an annotated entity mention with character offsets into the sentence
type EntitySpan struct {
	Text  string `json:"text"`  // Anchor text of the mention
	Begin int    `json:"begin"` // Begin offset (inclusive, in characters)
	End   int    `json:"end"`   // End offset (exclusive, in characters)
}

// Sentence is the document resource holding the full text
type Sentence struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

// EntityIndex maps anchor text to its span while remembering insertion order.
// Re-inserting an existing key replaces the span but keeps the key's position.
type EntityIndex struct {
	keys  []string
	spans map[string]EntitySpan
}

// NewEntityIndex creates an empty index
func NewEntityIndex() *EntityIndex {
	return &EntityIndex{
		spans: make(map[string]EntitySpan),
	}
}

// Put records a span under its anchor text
func (idx *EntityIndex) Put(span EntitySpan) {
	if _, exists := idx.spans[span.Text]; !exists {
		idx.keys = append(idx.keys, span.Text)
	}
	idx.spans[span.Text] = span
}

// Get returns the span recorded for text
func (idx *EntityIndex) Get(text string) (EntitySpan, bool) {
	span, ok := idx.spans[text]
	return span, ok
}

// Keys returns anchor texts in insertion order
func (idx *EntityIndex) Keys() []string {
	out := make([]string, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Spans returns spans in insertion order
func (idx *EntityIndex) Spans() []EntitySpan {
	out := make([]EntitySpan, 0, len(idx.keys))
	for _, k := range idx.keys {
		out = append(out, idx.spans[k])
	}
	return out
}

// Len returns the number of distinct anchor texts
func (idx *EntityIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.keys)
}
