package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrConvertToJSON is returned when a document cannot be serialized.
var ErrConvertToJSON = errors.New("failed to convert document")

// Format selects the serialization of a document.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case JSON, YAML:
		return Format(s), nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Encode writes doc to w in the given format. Object keys come out sorted.
func Encode(w io.Writer, doc *openapi3.T, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("%w: %w", ErrConvertToJSON, err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConvertToJSON, err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	}
}

// Validate resolves the component references of doc and runs the
// kin-openapi structural validation.
func Validate(ctx context.Context, doc *openapi3.T) error {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	if err := loader.ResolveRefsIn(doc, nil); err != nil {
		return fmt.Errorf("resolving references: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	return nil
}
