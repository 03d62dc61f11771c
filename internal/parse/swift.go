package parse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/routedoc/internal/lang"
	"github.com/phobologic/routedoc/internal/symbol"
)

var typeKinds = map[string]symbol.Kind{
	"struct":    symbol.Struct,
	"class":     symbol.Class,
	"actor":     symbol.Class,
	"enum":      symbol.Enum,
	"protocol":  symbol.Protocol,
	"extension": symbol.Extension,
}

// Swift parses source with parser, which must be set to the Swift grammar,
// and returns the structure tree SourceKitten reports for the same file:
// type declarations with their members, method parameters, and enum cases,
// each carrying the byte spans of the declaration and its name.
func Swift(ctx context.Context, parser *sitter.Parser, source []byte) (*symbol.Node, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing swift: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	return &symbol.Node{
		Span:     spanOf(root),
		Children: declarations(root, source, false),
	}, nil
}

// declarations converts the declarations under n. member is set when n is
// the body of a type, so properties and functions become its members.
func declarations(n *sitter.Node, src []byte, member bool) []*symbol.Node {
	var out []*symbol.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "class_declaration", "protocol_declaration":
			if d := typeDecl(c, src); d != nil {
				out = append(out, d)
			}
		case "property_declaration", "protocol_property_declaration":
			if !member {
				continue
			}
			if d := property(c, src); d != nil {
				out = append(out, d)
			}
		case "function_declaration", "protocol_function_declaration":
			out = append(out, function(c, src, member))
		case "enum_entry":
			if d := enumCase(c, src); d != nil {
				out = append(out, d)
			}
		case "comment", "multiline_comment":
		default:
			out = append(out, declarations(c, src, member)...)
		}
	}
	return out
}

func typeDecl(n *sitter.Node, src []byte) *symbol.Node {
	kind, ok := typeKinds[lang.SwiftDeclarationKind(n, src)]
	if !ok {
		return nil
	}
	d := &symbol.Node{Kind: kind, Span: spanOf(n)}
	if name := lang.Field(n, "name", "type_identifier", "user_type"); name != nil {
		d.Name = lang.NodeText(name, src)
		d.NameSpan = spanOf(name)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "inheritance_specifier":
			d.InheritedTypes = append(d.InheritedTypes, lang.CollapseWhitespace(lang.NodeText(c, src)))
		case "class_body", "enum_class_body", "protocol_body":
			d.Children = declarations(c, src, true)
		}
	}
	return d
}

func property(n *sitter.Node, src []byte) *symbol.Node {
	name := lang.Field(n, "name", "pattern")
	if name == nil {
		return nil
	}
	p := &symbol.Node{
		Kind:     symbol.InstanceVar,
		Name:     lang.CollapseWhitespace(lang.NodeText(name, src)),
		Span:     spanOf(n),
		NameSpan: spanOf(name),
	}
	switch {
	case lang.SwiftHasModifier(n, src, "class"):
		p.Kind = symbol.ClassVar
	case lang.SwiftHasModifier(n, src, "static"):
		p.Kind = symbol.StaticVar
	}
	if ta := lang.FirstOfType(n, "type_annotation"); ta != nil {
		p.TypeName = typeText(ta, src)
	}
	return p
}

func function(n *sitter.Node, src []byte, member bool) *symbol.Node {
	f := &symbol.Node{Kind: symbol.FreeFunction, Span: spanOf(n)}
	if member {
		switch {
		case lang.SwiftHasModifier(n, src, "class"):
			f.Kind = symbol.ClassMethod
		case lang.SwiftHasModifier(n, src, "static"):
			f.Kind = symbol.StaticMethod
		default:
			f.Kind = symbol.InstanceMethod
		}
	}

	var base string
	if name := lang.Field(n, "name", "simple_identifier"); name != nil {
		base = lang.NodeText(name, src)
		f.NameSpan = spanOf(name)
	}

	var labels strings.Builder
	for _, p := range parameters(n) {
		arg, label := parameter(p, src)
		if arg == nil {
			continue
		}
		labels.WriteString(label + ":")
		f.Children = append(f.Children, arg)
	}
	f.Name = base + "(" + labels.String() + ")"

	if rt := n.ChildByFieldName("return_type"); rt != nil {
		f.TypeName = lang.CollapseWhitespace(lang.NodeText(rt, src))
	}
	if body := lang.Field(n, "body", "function_body"); body != nil {
		f.Children = append(f.Children, declarations(body, src, false)...)
	}
	return f
}

// parameters returns the parameter nodes of a function declaration, which
// some grammar versions wrap in a parameter list node.
func parameters(fn *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(fn.NamedChildCount()); i++ {
		c := fn.NamedChild(i)
		switch c.Type() {
		case "parameter":
			out = append(out, c)
		case "function_value_parameters", "function_value_parameter":
			out = append(out, parameters(c)...)
		}
	}
	return out
}

// parameter converts one parameter and returns it with its argument label.
func parameter(p *sitter.Node, src []byte) (*symbol.Node, string) {
	internal := p.ChildByFieldName("name")
	external := p.ChildByFieldName("external_name")
	if internal == nil {
		var ids []*sitter.Node
		for i := 0; i < int(p.NamedChildCount()); i++ {
			if c := p.NamedChild(i); c.Type() == "simple_identifier" {
				ids = append(ids, c)
			}
		}
		switch len(ids) {
		case 0:
			return nil, ""
		case 1:
			internal = ids[0]
		default:
			external, internal = ids[0], ids[1]
		}
	}

	name := lang.NodeText(internal, src)
	label := name
	if external != nil {
		label = lang.NodeText(external, src)
	}

	arg := &symbol.Node{
		Kind:     symbol.Parameter,
		Name:     name,
		Span:     spanOf(p),
		NameSpan: spanOf(internal),
	}
	if t := p.ChildByFieldName("type"); t != nil {
		arg.TypeName = lang.CollapseWhitespace(lang.NodeText(t, src))
	} else {
		text := lang.NodeText(p, src)
		if i := strings.IndexByte(text, ':'); i >= 0 {
			arg.TypeName = lang.CollapseWhitespace(text[i+1:])
		}
	}
	return arg, label
}

// enumCase converts "case a, b = 2" into one enumcase node with an
// enumelement child per element, the shape SourceKitten reports. Each
// element spans its name and raw value.
func enumCase(n *sitter.Node, src []byte) *symbol.Node {
	decl := &symbol.Node{Kind: symbol.EnumCase, Span: spanOf(n)}
	var cur *symbol.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == "simple_identifier":
			s := spanOf(c)
			cur = &symbol.Node{
				Kind:     symbol.EnumElement,
				Name:     lang.NodeText(c, src),
				Span:     &symbol.Span{Offset: s.Offset, Length: s.Length},
				NameSpan: s,
			}
			decl.Children = append(decl.Children, cur)
		case c.Type() == "," || c.Type() == ";":
			cur = nil
		case cur != nil && c.Type() != "modifiers" && c.Type() != "attribute":
			cur.Span.Length = int(c.EndByte()) - cur.Span.Offset
		}
	}
	if len(decl.Children) == 0 {
		return nil
	}
	return decl
}

// typeText returns the type of a type annotation without its colon.
func typeText(ta *sitter.Node, src []byte) string {
	if t := ta.ChildByFieldName("type"); t != nil {
		return lang.CollapseWhitespace(lang.NodeText(t, src))
	}
	return strings.TrimSpace(strings.TrimPrefix(lang.CollapseWhitespace(lang.NodeText(ta, src)), ":"))
}

func spanOf(n *sitter.Node) *symbol.Span {
	return &symbol.Span{Offset: int(n.StartByte()), Length: int(n.EndByte() - n.StartByte())}
}
