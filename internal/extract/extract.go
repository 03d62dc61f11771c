// Package extract turns symbol trees into type metadata and selects the
// endpoint types from a registry.
package extract

import (
	"bytes"
	"slices"
	"strconv"
	"strings"

	"github.com/phobologic/routedoc/internal/model"
	"github.com/phobologic/routedoc/internal/symbol"
)

// Types returns a description for every named type-like node under root,
// nested ones included, in depth-first declaration order. source is the
// text the tree's byte spans refer to; file is recorded on each description.
// Type-like nodes without a name are skipped.
func Types(file string, source []byte, root *symbol.Node) []*model.TypeDescription {
	var out []*model.TypeDescription
	symbol.Walk(root, func(n *symbol.Node) bool {
		if n.Kind.IsType() && n.Name != "" {
			out = append(out, describe(file, source, n))
		}
		return true
	})
	return out
}

func describe(file string, source []byte, n *symbol.Node) *model.TypeDescription {
	td := &model.TypeDescription{
		Name:           n.Name,
		Kind:           typeKind(n.Kind),
		File:           file,
		InheritedTypes: slices.Clone(n.InheritedTypes),
	}

	for _, child := range n.Children {
		switch {
		case child.Kind == symbol.EnumCase:
			addCase(td, source, child)
		case child.Kind.IsStaticVar():
			addProperty(&td.StaticProperties, source, child)
		case child.Kind == symbol.InstanceVar:
			addProperty(&td.InstanceProperties, source, child)
		case child.Kind.IsStaticMethod():
			addMethod(&td.StaticMethods, child)
		case child.Kind == symbol.InstanceMethod:
			addMethod(&td.InstanceMethods, child)
		}
	}
	return td
}

func typeKind(k symbol.Kind) model.TypeKind {
	switch k {
	case symbol.Enum:
		return model.Enum
	case symbol.Class:
		return model.Class
	case symbol.Protocol:
		return model.Protocol
	default:
		return model.Struct
	}
}

// addCase records every element declaration of an enumcase node. The value
// is the literal after "=" within the element span, or the case name.
func addCase(td *model.TypeDescription, source []byte, n *symbol.Node) {
	for _, elem := range n.Children {
		if elem.Kind != symbol.EnumElement || elem.Name == "" {
			continue
		}

		value := elem.Name
		lit := ""
		if elem.Span != nil {
			lit = afterEquals(source, elem.Span.Offset, elem.Span.End())
		}
		// An element spanning only its name takes the raw value of its
		// declaration, which is unambiguous for a single element.
		if lit == "" && len(n.Children) == 1 && n.Span != nil {
			lit = afterEquals(source, n.Span.Offset, n.Span.End())
		}
		if lit != "" {
			value = unquote(lit)
		}

		td.Cases.Put(elem.Name, func(order int) model.EnumCase {
			return model.EnumCase{Name: elem.Name, Value: value, Order: order}
		})
	}
}

// addProperty records a property. The default value is sliced from the
// text following the property name so the name never leaks into it.
func addProperty(m *model.Members[model.PropertyDescription], source []byte, n *symbol.Node) {
	if n.Name == "" || n.TypeName == "" {
		return
	}

	var def string
	if n.Span != nil && n.NameSpan != nil {
		def = afterEquals(source, n.NameSpan.End(), n.Span.End())
	}

	m.Put(n.Name, func(order int) model.PropertyDescription {
		return model.PropertyDescription{
			Name:         n.Name,
			Type:         n.TypeName,
			DefaultValue: def,
			Order:        order,
		}
	})
}

func addMethod(m *model.Members[model.MethodDescription], n *symbol.Node) {
	if n.Name == "" {
		return
	}

	var args model.Members[model.ArgumentDescription]
	for _, c := range n.Children {
		if c.Kind != symbol.Parameter || c.Name == "" || c.TypeName == "" {
			continue
		}
		args.Put(c.Name, func(order int) model.ArgumentDescription {
			return model.ArgumentDescription{Name: c.Name, Type: c.TypeName, Order: order}
		})
	}

	m.Put(n.Name, func(order int) model.MethodDescription {
		return model.MethodDescription{
			Name:       n.Name,
			ReturnType: n.TypeName,
			Arguments:  args,
			Order:      order,
		}
	})
}

// afterEquals returns source[start:end] with everything up to the first "="
// dropped and whitespace and "=" trimmed from both ends. Out-of-range spans
// are clamped.
func afterEquals(source []byte, start, end int) string {
	start = max(0, min(start, len(source)))
	end = max(start, min(end, len(source)))

	seg := source[start:end]
	i := bytes.IndexByte(seg, '=')
	if i < 0 {
		return ""
	}
	return strings.Trim(string(seg[i:]), " \t\r\n=")
}

// unquote strips the quotes of a string literal; other literals are
// returned unchanged.
func unquote(lit string) string {
	if len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"' {
		if s, err := strconv.Unquote(lit); err == nil {
			return s
		}
		return lit[1 : len(lit)-1]
	}
	return lit
}

// Endpoints returns the types that declare conformance to marker.
func Endpoints(reg *model.Registry, marker string) *model.Registry {
	return reg.Filter(func(td *model.TypeDescription) bool {
		return td.Inherits(marker)
	})
}
