package symbol

import (
	"encoding/json"
	"fmt"
	"io"
)

// rawNode mirrors the SourceKitten structure document, which keys every
// field with a "key." prefix.
type rawNode struct {
	Kind           Kind           `json:"key.kind"`
	Name           string         `json:"key.name"`
	TypeName       string         `json:"key.typename"`
	Comment        string         `json:"key.doc.comment"`
	InheritedTypes []rawInherited `json:"key.inheritedtypes"`
	Offset         *int           `json:"key.offset"`
	Length         *int           `json:"key.length"`
	NameOffset     *int           `json:"key.nameoffset"`
	NameLength     *int           `json:"key.namelength"`
	Substructure   []rawNode      `json:"key.substructure"`
}

type rawInherited struct {
	Name string `json:"key.name"`
}

// Read decodes a SourceKitten structure document. The returned root has an
// empty Kind; its children are the file's top-level declarations.
func Read(r io.Reader) (*Node, error) {
	var raw rawNode
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding structure: %w", err)
	}
	return raw.node(), nil
}

// Decode is Read over an in-memory document.
func Decode(data []byte) (*Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding structure: %w", err)
	}
	return raw.node(), nil
}

func (r *rawNode) node() *Node {
	n := &Node{
		Kind:     r.Kind,
		Name:     r.Name,
		TypeName: r.TypeName,
		Comment:  r.Comment,
		Span:     span(r.Offset, r.Length),
		NameSpan: span(r.NameOffset, r.NameLength),
	}
	for _, it := range r.InheritedTypes {
		if it.Name != "" {
			n.InheritedTypes = append(n.InheritedTypes, it.Name)
		}
	}
	if len(r.Substructure) > 0 {
		n.Children = make([]*Node, 0, len(r.Substructure))
		for i := range r.Substructure {
			n.Children = append(n.Children, r.Substructure[i].node())
		}
	}
	return n
}

func span(offset, length *int) *Span {
	if offset == nil || length == nil {
		return nil
	}
	return &Span{Offset: *offset, Length: *length}
}
