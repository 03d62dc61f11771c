// Package model defines the type metadata extracted from Swift declarations
// and the registry that merges it across source files.
package model

import "slices"

// TypeKind is the declaration kind of a registered type.
type TypeKind string

const (
	Struct   TypeKind = "struct"
	Enum     TypeKind = "enum"
	Class    TypeKind = "class"
	Protocol TypeKind = "protocol"
)

// PropertyDescription is a stored or computed property. Type is the raw type
// expression, optional marker included. DefaultValue is the trimmed source
// text right of "=", empty when there is none.
type PropertyDescription struct {
	Name         string
	Type         string
	DefaultValue string
	Order        int
}

// ArgumentDescription is one parameter of a method.
type ArgumentDescription struct {
	Name  string
	Type  string
	Order int
}

// MethodDescription is a method keyed by its selector name, e.g.
// "run(context:parameters:query:body:)".
type MethodDescription struct {
	Name       string
	ReturnType string
	Arguments  Members[ArgumentDescription]
	Order      int
}

// EnumCase is one case of an enum. Value is the raw literal when the case
// declares one and the case name otherwise.
type EnumCase struct {
	Name  string
	Value string
	Order int
}

// TypeDescription is the metadata for one struct, enum, class or protocol.
type TypeDescription struct {
	Name           string
	Kind           TypeKind
	File           string
	InheritedTypes []string

	StaticProperties   Members[PropertyDescription]
	StaticMethods      Members[MethodDescription]
	InstanceProperties Members[PropertyDescription]
	InstanceMethods    Members[MethodDescription]
	Cases              Members[EnumCase]
}

// Inherits reports whether the type declares conformance to name.
func (t *TypeDescription) Inherits(name string) bool {
	return slices.Contains(t.InheritedTypes, name)
}

// CaseValues returns the enum case values in declaration order.
func (t *TypeDescription) CaseValues() []string {
	cases := t.Cases.Values()
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.Value
	}
	return out
}
