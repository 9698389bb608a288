package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNIF = `@prefix nif: <http://persistence.uni-leipzig.org/nlp2rdf/ontologies/nif-core#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

<http://example.org/doc#char=0,34>
    nif:isString "Barack Obama was born in Honolulu." .

<http://example.org/doc#char=0,12>
    nif:anchorOf "Barack Obama" ;
    nif:beginIndex "0"^^xsd:nonNegativeInteger ;
    nif:endIndex "12"^^xsd:nonNegativeInteger .
`

func TestDecode_SubjectsInOrder(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleNIF), FormatTurtle)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())

	subjects := g.Subjects()
	require.Len(t, subjects, 2)
	assert.Equal(t, "http://example.org/doc#char=0,34", subjects[0].String())
	assert.Equal(t, "http://example.org/doc#char=0,12", subjects[1].String())
}

func TestGraph_ValueLookups(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleNIF), FormatTurtle)
	require.NoError(t, err)

	doc := g.Subjects()[0]
	mention := g.Subjects()[1]

	text, ok := g.String(doc, NIFIsString)
	require.True(t, ok)
	assert.Equal(t, "Barack Obama was born in Honolulu.", text)

	_, ok = g.String(doc, NIFAnchorOf)
	assert.False(t, ok)

	end, err := g.Int(mention, NIFEndIndex)
	require.NoError(t, err)
	assert.Equal(t, 12, end)

	_, err = g.Int(doc, NIFBeginIndex)
	assert.Error(t, err)
}

func TestGraph_IntRejectsNonNumeric(t *testing.T) {
	subj, err := IRI("http://example.org/a")
	require.NoError(t, err)
	pred, err := IRI(NIFBeginIndex)
	require.NoError(t, err)
	lit, err := StringLiteral("zero")
	require.NoError(t, err)

	g := New([]rdf.Triple{{Subj: subj, Pred: pred, Obj: lit}})
	_, err = g.Int(subj, NIFBeginIndex)
	assert.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTurtle, FormatNTriples} {
		t.Run(string(format), func(t *testing.T) {
			subj, err := IRI("http://dbpedia.org/resource/Honolulu")
			require.NoError(t, err)
			pred, err := IRI(DBOWikiPageID)
			require.NoError(t, err)

			var buf bytes.Buffer
			err = Encode(&buf, []rdf.Triple{{Subj: subj, Pred: pred, Obj: IntLiteral(13735)}}, format)
			require.NoError(t, err)

			g, err := Decode(&buf, format)
			require.NoError(t, err)
			require.Equal(t, 1, g.Len())

			id, err := g.Int(subj, DBOWikiPageID)
			require.NoError(t, err)
			assert.Equal(t, 13735, id)
		})
	}
}

func TestLoadFile_FormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.nt")
	line := "<http://example.org/s> <" + NIFIsString + "> \"hello\" .\n"
	require.NoError(t, os.WriteFile(path, []byte(line), 0644))

	g, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.ttl"))
	assert.Error(t, err)
}

func TestIRI_RejectsQuotes(t *testing.T) {
	_, err := IRI(`http://dbpedia.org/resource/Origin_of_the_name_"Empire_State"`)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTurtle, false},
		{"TTL", FormatTurtle, false},
		{"ntriples", FormatNTriples, false},
		{"nt", FormatNTriples, false},
		{"rdfxml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_TurtleKeepsPunctuatedIRIs(t *testing.T) {
	refs := []string{
		"http://example.org/doc#char=0,35",
		"http://dbpedia.org/resource/Berlin_(band)",
		"http://dbpedia.org/resource/AC/DC",
		"http://dbpedia.org/resource/Washington,_D.C.",
	}
	pred, err := IRI(RDFSubject)
	require.NoError(t, err)

	var triples []rdf.Triple
	for _, ref := range refs {
		subj, err := IRI(ref)
		require.NoError(t, err)
		lit, err := StringLiteral("say \"hi\"\nthen leave")
		require.NoError(t, err)
		triples = append(triples, rdf.Triple{Subj: subj, Pred: pred, Obj: lit})
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, triples, FormatTurtle))
	out := buf.String()
	assert.Contains(t, out, "<http://example.org/doc#char=0,35>")
	assert.Contains(t, out, "rdf:subject")
	assert.NotContains(t, out, "ns0:")

	g, err := Decode(strings.NewReader(out), FormatTurtle)
	require.NoError(t, err)
	subjects := g.Subjects()
	require.Len(t, subjects, len(refs))
	for i, ref := range refs {
		assert.Equal(t, ref, subjects[i].String())
		text, ok := g.String(subjects[i], RDFSubject)
		require.True(t, ok)
		assert.Equal(t, "say \"hi\"\nthen leave", text)
	}
}

func TestEncode_TurtleGroupsSubjects(t *testing.T) {
	subj, err := IRI("http://example.org/doc#char=0,12")
	require.NoError(t, err)
	begin, err := IRI(NIFBeginIndex)
	require.NoError(t, err)
	end, err := IRI(NIFEndIndex)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Encode(&buf, []rdf.Triple{
		{Subj: subj, Pred: begin, Obj: IntLiteral(0)},
		{Subj: subj, Pred: end, Obj: IntLiteral(12)},
	}, FormatTurtle)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "<http://example.org/doc#char=0,12>"))

	g, err := Decode(&buf, FormatTurtle)
	require.NoError(t, err)
	n, err := g.Int(subj, NIFEndIndex)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestEncode_TurtleEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, FormatTurtle))

	g, err := Decode(&buf, FormatTurtle)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
}

func TestPredicateTerm(t *testing.T) {
	ns := DefaultNamespaces()
	tests := []struct {
		iri  string
		want string
	}{
		{DBOWikiPageID, "dbo:wikiPageID"},
		{RDFObject, "rdf:object"},
		{NIFAnchorOf, "nif:anchorOf"},
		{DBONamespace + "birth(place)", "<" + DBONamespace + "birth(place)>"},
		{"http://example.org/p", "<http://example.org/p>"},
	}
	for _, tt := range tests {
		t.Run(tt.iri, func(t *testing.T) {
			assert.Equal(t, tt.want, predicateTerm(tt.iri, ns))
		})
	}
}
