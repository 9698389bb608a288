package graph

// Namespaces used by nifrel documents
const (
	NIFNamespace = "http://persistence.uni-leipzig.org/nlp2rdf/ontologies/nif-core#"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	DBONamespace = "http://dbpedia.org/ontology/"
	ITSNamespace = "http://www.w3.org/2005/11/its/rdf#"
)

// NIF annotation properties
const (
	NIFIsString   = NIFNamespace + "isString"
	NIFAnchorOf   = NIFNamespace + "anchorOf"
	NIFBeginIndex = NIFNamespace + "beginIndex"
	NIFEndIndex   = NIFNamespace + "endIndex"
)

// RDF reification properties used for relation output
const (
	RDFSubject   = RDFNamespace + "subject"
	RDFPredicate = RDFNamespace + "predicate"
	RDFObject    = RDFNamespace + "object"
)

// DBOWikiPageID links a resource to its Wiki page ID
const DBOWikiPageID = DBONamespace + "wikiPageID"

// XSDInt is the datatype of persisted Wiki IDs
const XSDInt = XSDNamespace + "int"

// DefaultNamespaces returns the prefixes written by the encoder
func DefaultNamespaces() map[string]string {
	return map[string]string{
		NIFNamespace: "nif",
		RDFNamespace: "rdf",
		XSDNamespace: "xsd",
		DBONamespace: "dbo",
		ITSNamespace: "itsrdf",
	}
}
