// Package graph loads, queries and writes small RDF triple collections.
package graph

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knakk/rdf"
)

// Format is a triple serialization format
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
)

// ParseFormat maps a user-supplied name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: turtle, ntriples)", name)
	}
}

// FormatForPath picks a format from a file extension, defaulting to Turtle
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".nt") {
		return FormatNTriples
	}
	return FormatTurtle
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	if f == FormatNTriples {
		return ".nt"
	}
	return ".ttl"
}

func (f Format) rdfFormat() rdf.Format {
	if f == FormatNTriples {
		return rdf.NTriples
	}
	return rdf.Turtle
}

// Graph is a triple collection that remembers statement order
type Graph struct {
	triples []rdf.Triple
	index   map[string]map[string]rdf.Object // subject -> predicate -> first object
}

// New creates a graph from triples
func New(triples []rdf.Triple) *Graph {
	g := &Graph{index: make(map[string]map[string]rdf.Object)}
	for _, t := range triples {
		g.Add(t)
	}
	return g
}

// Add appends a statement
func (g *Graph) Add(t rdf.Triple) {
	g.triples = append(g.triples, t)

	subj := termKey(t.Subj)
	props, ok := g.index[subj]
	if !ok {
		props = make(map[string]rdf.Object)
		g.index[subj] = props
	}
	if _, seen := props[t.Pred.String()]; !seen {
		props[t.Pred.String()] = t.Obj
	}
}

// Len returns the number of statements
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the statements in load order
func (g *Graph) Triples() []rdf.Triple {
	out := make([]rdf.Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Subjects returns distinct subjects in order of first appearance
func (g *Graph) Subjects() []rdf.Subject {
	seen := make(map[string]bool)
	var subjects []rdf.Subject
	for _, t := range g.triples {
		key := termKey(t.Subj)
		if !seen[key] {
			seen[key] = true
			subjects = append(subjects, t.Subj)
		}
	}
	return subjects
}

// Value returns the first object stated for subject and predicate IRI
func (g *Graph) Value(subject rdf.Subject, predicate string) (rdf.Object, bool) {
	props, ok := g.index[termKey(subject)]
	if !ok {
		return nil, false
	}
	obj, ok := props[predicate]
	return obj, ok
}

// String returns the lexical form of a property value
func (g *Graph) String(subject rdf.Subject, predicate string) (string, bool) {
	obj, ok := g.Value(subject, predicate)
	if !ok {
		return "", false
	}
	return obj.String(), true
}

// Int returns a property value parsed as an integer
func (g *Graph) Int(subject rdf.Subject, predicate string) (int, error) {
	obj, ok := g.Value(subject, predicate)
	if !ok {
		return 0, fmt.Errorf("missing <%s>", predicate)
	}
	n, err := strconv.Atoi(strings.TrimSpace(obj.String()))
	if err != nil {
		return 0, fmt.Errorf("<%s> is not an integer: %q", predicate, obj.String())
	}
	return n, nil
}

// termKey keeps IRIs and blank nodes with the same label apart
func termKey(t rdf.Term) string {
	if t.Type() == rdf.TermBlank {
		return "_:" + t.String()
	}
	return t.String()
}

// Decode reads all triples from r
func Decode(r io.Reader, format Format) (*Graph, error) {
	dec := rdf.NewTripleDecoder(r, format.rdfFormat())
	triples, err := dec.DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return New(triples), nil
}

// LoadFile reads a triple file, choosing the format from its extension
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	g, err := Decode(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

// Encode writes triples to w. Turtle output declares DefaultNamespaces and never
// abbreviates subject or object IRIs.
func Encode(w io.Writer, triples []rdf.Triple, format Format) error {
	if format == FormatTurtle {
		if err := writeTurtle(w, triples, DefaultNamespaces()); err != nil {
			return fmt.Errorf("encode %s: %w", format, err)
		}
		return nil
	}

	enc := rdf.NewTripleEncoder(w, format.rdfFormat())
	if err := enc.EncodeAll(triples); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", format, err)
	}
	return nil
}

// IRI builds an IRI term, rejecting strings that cannot be one
func IRI(s string) (rdf.IRI, error) {
	iri, err := rdf.NewIRI(s)
	if err != nil {
		return rdf.IRI{}, fmt.Errorf("invalid IRI %q: %w", s, err)
	}
	return iri, nil
}

// StringLiteral builds a plain string literal
func StringLiteral(s string) (rdf.Literal, error) {
	return rdf.NewLiteral(s)
}

// IntLiteral builds an xsd:int literal
func IntLiteral(n int64) rdf.Literal {
	dt, _ := rdf.NewIRI(XSDInt)
	return rdf.NewTypedLiteral(strconv.FormatInt(n, 10), dt)
}
