package graph

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/knakk/rdf"
)

// localName matches local parts safe to write as prefix:local
var localName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// writeTurtle writes triples as Turtle. Subjects and objects are written as full
// terms; predicates are shortened to a declared prefix when the local part is a
// plain name. Consecutive statements about one subject share a block.
func writeTurtle(w io.Writer, triples []rdf.Triple, namespaces map[string]string) error {
	bw := bufio.NewWriter(w)

	iris := make([]string, 0, len(namespaces))
	for iri := range namespaces {
		iris = append(iris, iri)
	}
	sort.Slice(iris, func(i, j int) bool {
		return namespaces[iris[i]] < namespaces[iris[j]]
	})
	for _, iri := range iris {
		fmt.Fprintf(bw, "@prefix %s: <%s> .\n", namespaces[iri], iri)
	}

	current := ""
	for i, t := range triples {
		subj := termKey(t.Subj)
		if i == 0 || subj != current {
			if i > 0 {
				bw.WriteString(" .\n")
			}
			fmt.Fprintf(bw, "\n%s\n", t.Subj.Serialize(rdf.NTriples))
			current = subj
		} else {
			bw.WriteString(" ;\n")
		}
		fmt.Fprintf(bw, "    %s %s", predicateTerm(t.Pred.String(), namespaces), t.Obj.Serialize(rdf.NTriples))
	}
	if len(triples) > 0 {
		bw.WriteString(" .\n")
	}

	return bw.Flush()
}

// predicateTerm returns prefix:local for the longest matching namespace, or the
// full <IRI>
func predicateTerm(iri string, namespaces map[string]string) string {
	best := ""
	for ns := range namespaces {
		if len(ns) > len(best) && strings.HasPrefix(iri, ns) && localName.MatchString(iri[len(ns):]) {
			best = ns
		}
	}
	if best == "" {
		return "<" + iri + ">"
	}
	return namespaces[best] + ":" + iri[len(best):]
}
