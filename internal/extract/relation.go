package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/nifrel/internal/model"
)

// Vocabulary is an ordered list of relation phrases. Earlier phrases win.
type Vocabulary struct {
	phrases []string
	lower   []string
}

// NewVocabulary builds a vocabulary, dropping blank phrases and keeping order
func NewVocabulary(phrases []string) Vocabulary {
	var v Vocabulary
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v.phrases = append(v.phrases, p)
		v.lower = append(v.lower, strings.ToLower(p))
	}
	return v
}

// DefaultVocabulary returns the built-in relation phrases
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(model.DefaultRelations())
}

// Phrases returns the phrases in match order
func (v Vocabulary) Phrases() []string {
	out := make([]string, len(v.phrases))
	copy(out, v.phrases)
	return out
}

// Len returns the number of phrases
func (v Vocabulary) Len() int {
	return len(v.phrases)
}

// Find returns the first phrase contained in text, ignoring case
func (v Vocabulary) Find(text string) (string, bool) {
	lower := strings.ToLower(text)
	for i, phrase := range v.lower {
		if strings.Contains(lower, phrase) {
			return v.phrases[i], true
		}
	}
	return "", false
}

// Match walks the index pairwise in insertion order and returns the relation
// for the first pair whose window contains a vocabulary phrase, or nil.
//
// The walk keeps a carry slot: the second entity of one round is the first entity
// of the next, so keys k0,k1,k2 give the pairs (k0,k1), (k1,k2). Only the first
// matching pair is reported.
func Match(sentence model.Sentence, index *model.EntityIndex, vocab Vocabulary) (*model.RelationAssertion, error) {
	if index.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 entity mentions, found %d", ErrMissingAnnotation, index.Len())
	}

	keys := index.Keys()
	cursor := 0
	carry, carrying := "", false

	for {
		var entity1 string
		if carrying {
			entity1 = carry
		} else {
			if cursor >= len(keys) {
				break
			}
			entity1 = keys[cursor]
			cursor++
		}

		if cursor >= len(keys) {
			break
		}
		entity2 := keys[cursor]
		cursor++
		carry, carrying = entity2, true

		span1, _ := index.Get(entity1)
		span2, _ := index.Get(entity2)

		if relation, ok := vocab.Find(Window(sentence.Text, span1, span2)); ok {
			return &model.RelationAssertion{
				SentenceURI: sentence.URI,
				Subject:     entity2,
				Object:      entity1,
				Relation:    relation,
			}, nil
		}
	}

	return nil, nil
}

// Window returns the text tested for a pair: the characters between the second
// entity's begin and the first entity's end. An inverted range is read with its
// bounds swapped, and bounds are clamped to the text.
func Window(text string, first, second model.EntitySpan) string {
	runes := []rune(text)

	from, to := second.Begin, first.End
	if from > to {
		from, to = to, from
	}
	from = clamp(from, 0, len(runes))
	to = clamp(to, 0, len(runes))

	return string(runes[from:to])
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
