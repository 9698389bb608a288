package sparql

// Results is a SPARQL 1.1 query results JSON document
type Results struct {
	Head    Head  `json:"head"`
	Results Rows  `json:"results"`
	Boolean *bool `json:"boolean,omitempty"`
}

// Head lists the projected variables
type Head struct {
	Vars []string `json:"vars"`
}

// Rows holds the solution bindings
type Rows struct {
	Bindings []map[string]Binding `json:"bindings"`
}

// Binding is one bound RDF term
type Binding struct {
	Type     string `json:"type"` // uri, literal, typed-literal or bnode
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}
