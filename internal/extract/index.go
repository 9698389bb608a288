package extract

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/nifrel/internal/graph"
	"github.com/ppiankov/nifrel/internal/model"
)

// ErrMissingAnnotation is returned for documents without a sentence, with fewer
// than two entity mentions, or with a mention lacking usable offsets
var ErrMissingAnnotation = errors.New("missing annotation")

// BuildIndex scans the distinct subjects of g in statement order. Subjects with
// nif:anchorOf become entity spans; otherwise subjects with nif:isString become
// the sentence, the last one scanned winning. Everything else is ignored.
func BuildIndex(g *graph.Graph, logger *slog.Logger) (model.Sentence, *model.EntityIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var sentence model.Sentence
	haveSentence := false
	index := model.NewEntityIndex()

	for _, subj := range g.Subjects() {
		if anchor, ok := g.String(subj, graph.NIFAnchorOf); ok {
			begin, err := g.Int(subj, graph.NIFBeginIndex)
			if err != nil {
				return model.Sentence{}, nil, fmt.Errorf("%w: mention %q of <%s>: %v", ErrMissingAnnotation, anchor, subj, err)
			}
			end, err := g.Int(subj, graph.NIFEndIndex)
			if err != nil {
				return model.Sentence{}, nil, fmt.Errorf("%w: mention %q of <%s>: %v", ErrMissingAnnotation, anchor, subj, err)
			}
			index.Put(model.EntitySpan{Text: anchor, Begin: begin, End: end})
			continue
		}

		if text, ok := g.String(subj, graph.NIFIsString); ok {
			if haveSentence {
				logger.Warn("document holds more than one sentence, keeping the last", "dropped", sentence.URI, "kept", subj.String())
			}
			sentence = model.Sentence{URI: subj.String(), Text: text}
			haveSentence = true
		}
	}

	if !haveSentence {
		return model.Sentence{}, nil, fmt.Errorf("%w: no nif:isString sentence", ErrMissingAnnotation)
	}
	if index.Len() < 2 {
		return model.Sentence{}, nil, fmt.Errorf("%w: need at least 2 entity mentions, found %d", ErrMissingAnnotation, index.Len())
	}

	return sentence, index, nil
}
