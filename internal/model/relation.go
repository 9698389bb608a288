package model

// RelationAssertion is the single relation found in a sentence
type RelationAssertion struct {
	SentenceURI string `json:"sentence_uri"` // Node the relation is attached to
	Subject     string `json:"subject"`      // Anchor text of the second entity of the pair
	Object      string `json:"object"`       // Anchor text of the first entity of the pair
	Relation    string `json:"relation"`     // Vocabulary phrase that matched
}
