package model

// TypeInfo summarises one registered type for the type map.
type TypeInfo struct {
	Name       string
	Kind       TypeKind
	File       string
	Inherits   []string
	Endpoint   bool
	Properties int
	Methods    int
	Cases      int
	Rank       float64
}

// Member is one property or method row of the type map.
type Member struct {
	Owner   string
	Scope   string // "static" or "instance"
	Kind    string // "property" or "method"
	Name    string
	Type    string
	Default string
	Order   int
}

// CaseRow is one enum case row of the type map.
type CaseRow struct {
	Owner string
	Name  string
	Value string
	Order int
}

// Reference is an edge in the type reference graph: Source names Target in
// the types of the members listed in Via.
type Reference struct {
	Source string
	Target string
	Via    []string
}

// TypeMap is the analysed registry, ready for serialization.
type TypeMap struct {
	Root       string
	Types      []TypeInfo
	Members    []Member
	Cases      []CaseRow
	References []Reference
}
