// Package parse produces the symbol tree of a Swift source file from one of
// several frontends: a precomputed SourceKitten structure document next to
// the file, the sourcekitten tool itself, or the tree-sitter Swift grammar.
package parse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/routedoc/internal/lang"
	"github.com/phobologic/routedoc/internal/symbol"
)

// Frontend selects how symbol trees are produced.
type Frontend string

const (
	// Auto reads the sidecar document when one exists and falls back to
	// tree-sitter.
	Auto         Frontend = "auto"
	SourceKitten Frontend = "sourcekitten"
	TreeSitter   Frontend = "tree-sitter"
	Sidecar      Frontend = "sidecar"
)

// ParseFrontend validates a frontend name.
func ParseFrontend(s string) (Frontend, error) {
	switch f := Frontend(s); f {
	case Auto, SourceKitten, TreeSitter, Sidecar:
		return f, nil
	case "":
		return Auto, nil
	}
	return "", fmt.Errorf("unsupported frontend %q", s)
}

// DefaultTimeout bounds one sourcekitten invocation.
const DefaultTimeout = 30 * time.Second

// Parser produces symbol trees. It holds a tree-sitter parser, so each
// goroutine must use its own Parser.
type Parser struct {
	frontend Frontend
	swift    *lang.Language
	ts       *sitter.Parser

	// Run executes sourcekitten; it defaults to running the binary on PATH.
	Run Runner
	// Timeout bounds each sourcekitten run.
	Timeout time.Duration
}

// NewParser returns a Parser using frontend f.
func NewParser(f Frontend) *Parser {
	return &Parser{
		frontend: f,
		swift:    lang.Languages["swift"],
		Run:      execRunner,
		Timeout:  DefaultTimeout,
	}
}

// Frontend returns the frontend p was created with.
func (p *Parser) Frontend() Frontend { return p.frontend }

// Parse returns the symbol tree of the Swift file at path whose contents
// are source.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*symbol.Node, error) {
	switch p.frontend {
	case Sidecar:
		return ReadSidecar(p.SidecarPath(path))
	case SourceKitten:
		return p.sourceKitten(ctx, path)
	case TreeSitter:
		return p.treeSitter(ctx, source)
	}

	root, err := ReadSidecar(p.SidecarPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return p.treeSitter(ctx, source)
	}
	return root, err
}

// SidecarPath returns where the structure document for path is expected.
func (p *Parser) SidecarPath(path string) string {
	return path + p.swift.StructureSuffix
}

func (p *Parser) treeSitter(ctx context.Context, source []byte) (*symbol.Node, error) {
	if p.ts == nil {
		p.ts = p.swift.NewParser()
	}
	return Swift(ctx, p.ts, source)
}

// Close releases the tree-sitter parser.
func (p *Parser) Close() {
	if p.ts != nil {
		p.ts.Close()
		p.ts = nil
	}
}
