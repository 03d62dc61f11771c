// Package symbol defines the structural symbol tree of a Swift source file:
// nested declarations carrying a kind, a name, a type signature and the byte
// spans needed to slice the original source text.
package symbol

// Kind is the SourceKit declaration/statement/expression tag of a node.
type Kind string

const (
	LocalVar       Kind = "source.lang.swift.decl.var.local"
	InstanceVar    Kind = "source.lang.swift.decl.var.instance"
	StaticVar      Kind = "source.lang.swift.decl.var.static"
	ClassVar       Kind = "source.lang.swift.decl.var.class"
	InstanceMethod Kind = "source.lang.swift.decl.function.method.instance"
	StaticMethod   Kind = "source.lang.swift.decl.function.method.static"
	ClassMethod    Kind = "source.lang.swift.decl.function.method.class"

	Struct         Kind = "source.lang.swift.decl.struct"
	Enum           Kind = "source.lang.swift.decl.enum"
	Class          Kind = "source.lang.swift.decl.class"
	Extension      Kind = "source.lang.swift.decl.extension"
	Protocol       Kind = "source.lang.swift.decl.protocol"
	AssociatedType Kind = "source.lang.swift.decl.associatedtype"
	FreeFunction   Kind = "source.lang.swift.decl.function.free"
	GenericParam   Kind = "source.lang.swift.decl.generic_type_param"
	Typealias      Kind = "source.lang.swift.decl.typealias"
	EnumCase       Kind = "source.lang.swift.decl.enumcase"
	EnumElement    Kind = "source.lang.swift.decl.enumelement"
	Parameter      Kind = "source.lang.swift.decl.var.parameter"

	BraceStmt Kind = "source.lang.swift.stmt.brace"
	CallExpr  Kind = "source.lang.swift.expr.call"
)

// IsType reports whether nodes of this kind become registry entries.
func (k Kind) IsType() bool {
	switch k {
	case Struct, Enum, Class, Protocol:
		return true
	}
	return false
}

// IsStaticVar reports whether k declares a type-level property.
func (k Kind) IsStaticVar() bool { return k == StaticVar || k == ClassVar }

// IsStaticMethod reports whether k declares a type-level method.
func (k Kind) IsStaticMethod() bool { return k == StaticMethod || k == ClassMethod }

// Short returns the trailing component of the kind, e.g. "struct".
func (k Kind) Short() string {
	s := string(k)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

// Span is a byte range into the source file the tree was built from.
type Span struct {
	Offset int
	Length int
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int { return s.Offset + s.Length }

// Node is one entry of the symbol tree. Name, TypeName, Span and NameSpan
// are optional; a nil span means the producer did not report it.
type Node struct {
	Kind           Kind
	Name           string
	TypeName       string
	Comment        string
	InheritedTypes []string
	Span           *Span
	NameSpan       *Span
	Children       []*Node
}

// Walk visits n and its descendants depth-first, left to right. Returning
// false from fn skips the children of the node just visited.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
