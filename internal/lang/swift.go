package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/swift"
)

func init() {
	Languages["swift"] = &Language{
		Name:            "swift",
		Extensions:      []string{".swift"},
		lang:            swift.GetLanguage(),
		StructureSuffix: ".structure.json",
	}
}

// declarationKinds are the keywords that open a class_declaration.
var declarationKinds = map[string]bool{
	"struct":    true,
	"class":     true,
	"enum":      true,
	"actor":     true,
	"extension": true,
	"protocol":  true,
}

// SwiftDeclarationKind returns the keyword of a class_declaration or
// protocol_declaration node: "struct", "class", "enum", "actor",
// "extension" or "protocol".
func SwiftDeclarationKind(node *sitter.Node, source []byte) string {
	if k := node.ChildByFieldName("declaration_kind"); k != nil {
		return NodeText(k, source)
	}
	// Older grammars leave the keyword as an anonymous child.
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.IsNamed() {
			continue
		}
		if t := child.Type(); declarationKinds[t] {
			return t
		}
	}
	return ""
}

// SwiftHasModifier reports whether the modifiers of a declaration include
// one of mods, e.g. "static".
func SwiftHasModifier(node *sitter.Node, source []byte, mods ...string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		var text string
		switch child.Type() {
		case "modifiers":
			text = NodeText(child, source)
		case "static", "class":
			// func declarations spell "class func" without a modifiers node.
			if !child.IsNamed() {
				text = child.Type()
			}
		default:
			continue
		}
		for _, tok := range strings.Fields(text) {
			for _, m := range mods {
				if tok == m {
					return true
				}
			}
		}
	}
	return false
}
