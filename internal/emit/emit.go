// Package emit serializes relation assertions as RDF.
package emit

import (
	"errors"
	"fmt"
	"io"

	"github.com/knakk/rdf"
	"github.com/ppiankov/nifrel/internal/graph"
	"github.com/ppiankov/nifrel/internal/model"
)

// ErrNoAssertion is returned when there is nothing to write
var ErrNoAssertion = errors.New("no relation assertion")

// Triples describes a on its sentence node: rdf:object, rdf:subject and
// rdf:predicate, each carrying a plain string literal.
func Triples(a *model.RelationAssertion) ([]rdf.Triple, error) {
	if a == nil {
		return nil, ErrNoAssertion
	}

	node, err := graph.IRI(a.SentenceURI)
	if err != nil {
		return nil, fmt.Errorf("sentence node: %w", err)
	}

	props := []struct {
		predicate string
		value     string
	}{
		{graph.RDFObject, a.Object},
		{graph.RDFSubject, a.Subject},
		{graph.RDFPredicate, a.Relation},
	}

	triples := make([]rdf.Triple, 0, len(props))
	for _, p := range props {
		pred, err := graph.IRI(p.predicate)
		if err != nil {
			return nil, err
		}
		lit, err := graph.StringLiteral(p.value)
		if err != nil {
			return nil, fmt.Errorf("literal %q: %w", p.value, err)
		}
		triples = append(triples, rdf.Triple{Subj: node, Pred: pred, Obj: lit})
	}
	return triples, nil
}

// Write serializes a to w in the given format
func Write(w io.Writer, a *model.RelationAssertion, format graph.Format) error {
	triples, err := Triples(a)
	if err != nil {
		return err
	}
	return graph.Encode(w, triples, format)
}
