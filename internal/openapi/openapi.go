// Package openapi builds the OpenAPI 3.0 document produced from endpoint
// declarations on top of the kin-openapi model.
package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Version is the OpenAPI version written to every document.
const Version = "3.0.0"

// JSONContent is the only media type routedoc emits.
const JSONContent = "application/json"

// ErrUnsupportedMethod is returned by AddOperation for a method that has no
// slot on a path item.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

var methods = map[string]bool{
	http.MethodConnect: true,
	http.MethodDelete:  true,
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodPatch:   true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodTrace:   true,
}

// SchemaRef returns the reference string for a component schema.
func SchemaRef(name string) string {
	return "#/components/schemas/" + name
}

// RefTo returns a reference to the named component.
func RefTo(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(SchemaRef(name), nil)
}

// TypeSchema returns an inline schema of the given JSON type and format.
func TypeSchema(typ, format string) *openapi3.Schema {
	return &openapi3.Schema{Type: &openapi3.Types{typ}, Format: format}
}

// New returns an empty document.
func New(info openapi3.Info, servers openapi3.Servers) *openapi3.T {
	return &openapi3.T{
		OpenAPI: Version,
		Info:    &info,
		Servers: servers,
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}
}

// AddOperation stores op under path and method and reports whether an
// operation was already there. method is matched case-insensitively.
func AddOperation(doc *openapi3.T, path, method string, op *openapi3.Operation) (bool, error) {
	m := strings.ToUpper(method)
	if !methods[m] {
		return false, fmt.Errorf("%w %q", ErrUnsupportedMethod, method)
	}
	replaced := false
	if item := doc.Paths.Value(path); item != nil {
		replaced = item.GetOperation(m) != nil
	}
	doc.AddOperation(path, m, op)
	return replaced, nil
}

// Operation returns the operation stored under path and method, or nil.
func Operation(doc *openapi3.T, path, method string) *openapi3.Operation {
	m := strings.ToUpper(method)
	item := doc.Paths.Value(path)
	if item == nil || !methods[m] {
		return nil
	}
	return item.GetOperation(m)
}

// JSONBody returns a request body whose only content is schema as
// application/json.
func JSONBody(schema *openapi3.SchemaRef, required bool) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithJSONSchemaRef(schema).WithRequired(required),
	}
}

// Responses returns the response table of an operation: a single 200 with
// an empty description, carrying schema when it is not nil.
func Responses(schema *openapi3.SchemaRef) *openapi3.Responses {
	resp := openapi3.NewResponse().WithDescription("")
	if schema != nil {
		resp = resp.WithJSONSchemaRef(schema)
	}
	return openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: resp}))
}

// SecuritySchemes converts the free-form scheme tables of a configuration
// file into security scheme objects.
func SecuritySchemes(raw map[string]map[string]any) (openapi3.SecuritySchemes, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvertToJSON, err)
	}
	var schemes openapi3.SecuritySchemes
	if err := json.Unmarshal(data, &schemes); err != nil {
		return nil, fmt.Errorf("decoding security schemes: %w", err)
	}
	return schemes, nil
}
