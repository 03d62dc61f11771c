// Package typeexpr parses the textual Swift type expressions found in symbol
// type signatures, such as "[User]?" or "Page<Item>", into a small tagged
// variant so callers match on structure instead of re-matching strings.
package typeexpr

import (
	"strings"
	"unicode"
)

// Kind tags the shape of an Expr.
type Kind int

const (
	Object Kind = iota
	Primitive
	Void
	Array
	Dict
	Page
	Optional
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Primitive:
		return "primitive"
	case Void:
		return "void"
	case Array:
		return "array"
	case Dict:
		return "dict"
	case Page:
		return "page"
	case Optional:
		return "optional"
	default:
		return "unknown"
	}
}

// Expr is a parsed type expression. Name is set for Object and Primitive;
// Elem is the element of Array, Page and Optional and the value of Dict;
// Key is the key of Dict. Args holds the type arguments of a generic Object
// that is not one of the recognised wrappers, e.g. EventLoopFuture<User>.
type Expr struct {
	Kind Kind
	Name string
	Elem *Expr
	Key  *Expr
	Args []Expr
}

// Parse parses s. Text that does not follow the supported grammar is kept
// whole as an Object reference so lookups fail loudly rather than silently.
func Parse(s string) Expr {
	p := &parser{src: s}
	e, ok := p.expr()
	p.space()
	if !ok || p.pos != len(p.src) {
		return Expr{Kind: Object, Name: strings.TrimSpace(s)}
	}
	return e
}

// Unwrap strips every Optional layer.
func (e Expr) Unwrap() Expr {
	for e.Kind == Optional && e.Elem != nil {
		e = *e.Elem
	}
	return e
}

// IsOptional reports whether the outermost layer is Optional.
func (e Expr) IsOptional() bool { return e.Kind == Optional }

// JSON returns the JSON type of a Primitive expression.
func (e Expr) JSON() (JSONType, bool) {
	if e.Kind != Primitive {
		return JSONType{}, false
	}
	return Lookup(e.Name)
}

// String renders e in canonical Swift syntax.
func (e Expr) String() string {
	switch e.Kind {
	case Void:
		return "Void"
	case Array:
		return "[" + e.Elem.String() + "]"
	case Dict:
		return "[" + e.Key.String() + ": " + e.Elem.String() + "]"
	case Page:
		return "Page<" + e.Elem.String() + ">"
	case Optional:
		return e.Elem.String() + "?"
	default:
		return e.Name
	}
}

// Objects returns the names of every Object in e, outermost first,
// including those nested in wrappers and generic arguments.
func (e Expr) Objects() []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch e.Kind {
		case Object:
			out = append(out, e.Name)
			for _, a := range e.Args {
				walk(a)
			}
		case Dict:
			walk(*e.Key)
			walk(*e.Elem)
		case Array, Page, Optional:
			walk(*e.Elem)
		}
	}
	walk(e)
	return out
}

// Clean strips optional markers from raw and maps primitives to their JSON
// type name; any other expression is returned in canonical form. Clean is
// idempotent.
func Clean(raw string) string {
	e := Parse(raw).Unwrap()
	if jt, ok := e.JSON(); ok {
		return jt.Type
	}
	return e.String()
}

type parser struct {
	src string
	pos int
}

func (p *parser) space() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.space()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) accept(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expr() (Expr, bool) {
	e, ok := p.primary()
	if !ok {
		return Expr{}, false
	}
	for {
		switch {
		case p.accept('?'):
			inner := e
			e = Expr{Kind: Optional, Elem: &inner}
		case p.accept('!'):
			// Implicitly unwrapped optionals encode like the wrapped type.
		default:
			return e, true
		}
	}
}

func (p *parser) primary() (Expr, bool) {
	switch p.peek() {
	case '[':
		p.pos++
		first, ok := p.expr()
		if !ok {
			return Expr{}, false
		}
		if p.accept(':') {
			value, ok := p.expr()
			if !ok || !p.accept(']') {
				return Expr{}, false
			}
			return Expr{Kind: Dict, Key: &first, Elem: &value}, true
		}
		if !p.accept(']') {
			return Expr{}, false
		}
		return Expr{Kind: Array, Elem: &first}, true
	case '(':
		p.pos++
		if !p.accept(')') {
			return Expr{}, false
		}
		return Expr{Kind: Void}, true
	}

	name := p.ident()
	if name == "" {
		return Expr{}, false
	}
	if !p.accept('<') {
		return named(name), true
	}

	var args []Expr
	for {
		a, ok := p.expr()
		if !ok {
			return Expr{}, false
		}
		args = append(args, a)
		if p.accept(',') {
			continue
		}
		if p.accept('>') {
			break
		}
		return Expr{}, false
	}
	return generic(name, args), true
}

func (p *parser) ident() string {
	p.space()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// named classifies a bare identifier. Qualified names keep their last
// component, since nested and module-qualified types are registered under
// their simple name.
func named(name string) Expr {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	switch {
	case name == "Void":
		return Expr{Kind: Void}
	case IsPrimitive(name):
		return Expr{Kind: Primitive, Name: name}
	default:
		return Expr{Kind: Object, Name: name}
	}
}

func generic(name string, args []Expr) Expr {
	base := named(name).Name
	switch {
	case (base == "Array" || base == "Set") && len(args) == 1:
		return Expr{Kind: Array, Elem: &args[0]}
	case base == "Optional" && len(args) == 1:
		return Expr{Kind: Optional, Elem: &args[0]}
	case base == "Dictionary" && len(args) == 2:
		return Expr{Kind: Dict, Key: &args[0], Elem: &args[1]}
	case base == "Page" && len(args) == 1:
		return Expr{Kind: Page, Elem: &args[0]}
	}

	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return Expr{Kind: Object, Name: base + "<" + strings.Join(parts, ", ") + ">", Args: args}
}
