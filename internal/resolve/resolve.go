// Package resolve turns the endpoint types of a registry into an OpenAPI
// document, registering every type reachable from a route as a component
// schema exactly once.
package resolve

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/phobologic/routedoc/internal/extract"
	"github.com/phobologic/routedoc/internal/model"
	"github.com/phobologic/routedoc/internal/openapi"
	"github.com/phobologic/routedoc/internal/typeexpr"
)

const (
	DefaultMarker      = "APIRoutingEndpoint"
	DefaultHandler     = "run(context:parameters:query:body:)"
	DefaultAsyncPrefix = "EventLoopFuture<"
	DefaultAsyncSuffix = ">"

	// PageMetadataName is the component shared by every paginated envelope.
	PageMetadataName = "VaporPageMetadata"
)

// Return types that produce an empty response schema.
var ignoredReturns = map[string]bool{
	"String":             true,
	"Int":                true,
	"HTTPStatus":         true,
	"HTTPResponseStatus": true,
}

// Options configures Generate. Zero values fall back to the defaults above.
type Options struct {
	Info    openapi3.Info
	Servers openapi3.Servers

	Marker      string
	Handler     string
	AsyncPrefix string
	AsyncSuffix string

	// SecuritySchemes is copied into components.securitySchemes.
	SecuritySchemes openapi3.SecuritySchemes
	// ContextScheme maps the type of a handler's context argument to the
	// name of the security scheme the operation requires.
	ContextScheme func(contextType string) (scheme string, ok bool)

	// KeepGoing skips endpoints that fail to resolve instead of aborting.
	KeepGoing bool

	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Handler == "" {
		o.Handler = DefaultHandler
	}
	if o.AsyncPrefix == "" && o.AsyncSuffix == "" {
		o.AsyncPrefix, o.AsyncSuffix = DefaultAsyncPrefix, DefaultAsyncSuffix
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// SchemeMap adapts a context-type to scheme-name table for
// Options.ContextScheme.
func SchemeMap(m map[string]string) func(string) (string, bool) {
	return func(contextType string) (string, bool) {
		s, ok := m[contextType]
		return s, ok
	}
}

type resolver struct {
	types *model.Registry
	opts  Options
	defs  *Definitions
	log   zerolog.Logger
}

// Generate builds the document for every endpoint type in reg, in registry
// order. Without KeepGoing the first endpoint error aborts and no document
// is returned. With KeepGoing failed endpoints are left out along with every
// schema registered while resolving them, the document is still returned, and
// the error lists every skipped endpoint.
func Generate(reg *model.Registry, opts Options) (*openapi3.T, error) {
	opts = opts.withDefaults()
	r := &resolver{
		types: reg,
		opts:  opts,
		defs:  NewDefinitions(),
		log:   *opts.Logger,
	}
	doc := openapi.New(opts.Info, opts.Servers)

	var errs *multierror.Error
	for ep := range extract.Endpoints(reg, opts.Marker).All() {
		mark := r.defs.mark()
		if err := r.endpoint(doc, ep); err != nil {
			if !opts.KeepGoing {
				return nil, err
			}
			r.defs.rollback(mark)
			r.log.Warn().Err(err).Str("endpoint", ep.Name).Msg("skipping endpoint")
			errs = multierror.Append(errs, err)
		}
	}

	doc.Components.Schemas = r.defs.Schemas()
	doc.Components.SecuritySchemes = opts.SecuritySchemes
	return doc, errs.ErrorOrNil()
}

// site names where a type is used, for error messages.
type site struct {
	endpoint string
	role     string
}

func (r *resolver) endpoint(doc *openapi3.T, ep *model.TypeDescription) error {
	method, ok := ep.StaticProperties.Get("method")
	if !ok || method.DefaultValue == "" {
		return missing(ep.Name, `no static property "method" with a default value`)
	}
	route, ok := ep.StaticProperties.Get("path")
	if !ok || route.DefaultValue == "" {
		return missing(ep.Name, `no static property "path" with a default value`)
	}
	handler, ok := ep.StaticMethods.Get(r.opts.Handler)
	if !ok {
		return missing(ep.Name, "no static method %q", r.opts.Handler)
	}

	path := CleanPath(route.DefaultValue)
	tag := tagFor(path)
	op := &openapi3.Operation{
		OperationID: ep.Name,
		Summary:     ep.Name,
	}

	for _, arg := range handler.Arguments.All() {
		e := typeexpr.Parse(arg.Type)
		switch arg.Name {
		case "context":
			if r.opts.ContextScheme == nil {
				continue
			}
			if scheme, ok := r.opts.ContextScheme(e.Unwrap().String()); ok {
				if op.Security == nil {
					op.Security = openapi3.NewSecurityRequirements()
				}
				op.Security.With(openapi3.NewSecurityRequirement().Authenticate(scheme))
			}
		case "parameters":
			if e.Unwrap().Kind == typeexpr.Void {
				continue
			}
			td, err := r.lookup(e.Unwrap(), site{ep.Name, "path parameters"})
			if err != nil {
				return err
			}
			for _, p := range td.InstanceProperties.All() {
				path = bindPathParam(path, p.Name)
				op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
					Value: openapi3.NewPathParameter(p.Name).WithSchema(pathSchema(p.Type)),
				})
			}
		case "query":
			if e.Unwrap().Kind == typeexpr.Void {
				continue
			}
			td, err := r.lookup(e.Unwrap(), site{ep.Name, "query"})
			if err != nil {
				return err
			}
			for _, p := range td.InstanceProperties.All() {
				pe := typeexpr.Parse(p.Type)
				s, err := r.schema(pe, site{ep.Name, fmt.Sprintf("query parameter %q", p.Name)})
				if err != nil {
					return err
				}
				param := openapi3.NewQueryParameter(p.Name).WithRequired(!pe.IsOptional())
				param.Schema = s
				op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
			}
		case "body":
			if e.Unwrap().Kind == typeexpr.Void {
				continue
			}
			s, err := r.schema(e, site{ep.Name, "request body"})
			if err != nil {
				return err
			}
			op.RequestBody = openapi.JSONBody(s, !e.IsOptional())
		}
	}

	resp, err := r.response(handler.ReturnType, ep.Name)
	if err != nil {
		return err
	}
	op.Responses = openapi.Responses(resp)
	if tag != "" {
		op.Tags = []string{tag}
	}

	m := CleanMethod(method.DefaultValue)
	replaced, err := openapi.AddOperation(doc, path, m, op)
	if err != nil {
		return missing(ep.Name, "%v", err)
	}
	if replaced {
		r.log.Warn().Str("endpoint", ep.Name).Str("method", m).Str("path", path).
			Msg("route declared more than once, keeping the later endpoint")
	}
	r.log.Debug().Str("endpoint", ep.Name).Str("method", m).Str("path", path).Msg("resolved endpoint")
	return nil
}

func (r *resolver) lookup(e typeexpr.Expr, s site) (*model.TypeDescription, error) {
	td, ok := r.types.Get(e.String())
	if !ok {
		return nil, missing(s.endpoint, "can't find type %q used by %s", e.String(), s.role)
	}
	return td, nil
}

// pathSchema maps a path parameter to its primitive schema; anything else is
// an opaque object.
func pathSchema(raw string) *openapi3.Schema {
	if jt, ok := typeexpr.Parse(raw).Unwrap().JSON(); ok {
		return openapi.TypeSchema(jt.Type, jt.Format)
	}
	return openapi3.NewObjectSchema()
}

// response resolves a handler return type, or returns nil for an empty
// response.
func (r *resolver) response(returnType, endpoint string) (*openapi3.SchemaRef, error) {
	if returnType == "" {
		return nil, nil
	}
	e := typeexpr.Parse(r.stripAsync(returnType)).Unwrap()
	switch {
	case e.Kind == typeexpr.Void, e.Kind == typeexpr.Dict:
		return nil, nil
	case (e.Kind == typeexpr.Primitive || e.Kind == typeexpr.Object) && ignoredReturns[e.Name]:
		return nil, nil
	}
	return r.schema(e, site{endpoint, "response"})
}

func (r *resolver) stripAsync(t string) string {
	p, s := r.opts.AsyncPrefix, r.opts.AsyncSuffix
	if len(t) >= len(p)+len(s) && t[:len(p)] == p && t[len(t)-len(s):] == s {
		return t[len(p) : len(t)-len(s)]
	}
	return t
}

// schema returns the inline schema for e, registering the components it
// references.
func (r *resolver) schema(e typeexpr.Expr, s site) (*openapi3.SchemaRef, error) {
	switch e.Kind {
	case typeexpr.Optional:
		return r.schema(*e.Elem, s)
	case typeexpr.Primitive:
		jt, _ := e.JSON()
		return openapi.TypeSchema(jt.Type, jt.Format).NewRef(), nil
	case typeexpr.Void:
		return openapi3.NewObjectSchema().NewRef(), nil
	case typeexpr.Array:
		items, err := r.schema(*e.Elem, s)
		if err != nil {
			return nil, err
		}
		arr := openapi3.NewArraySchema()
		arr.Items = items
		return arr.NewRef(), nil
	case typeexpr.Dict:
		values, err := r.schema(*e.Elem, s)
		if err != nil {
			return nil, err
		}
		obj := openapi3.NewObjectSchema()
		obj.AdditionalProperties = openapi3.AdditionalProperties{Schema: values}
		return obj.NewRef(), nil
	case typeexpr.Page:
		name, err := r.registerPage(*e.Elem, s)
		if err != nil {
			return nil, err
		}
		return openapi.RefTo(name), nil
	}
	if err := r.register(e.Name, s); err != nil {
		return nil, err
	}
	return openapi.RefTo(e.Name), nil
}

// register adds the component for the named type unless it is already
// present. The name is reserved while its properties resolve; a failed
// endpoint is rolled back as a whole by Generate.
func (r *resolver) register(name string, s site) error {
	if r.defs.Has(name) {
		return nil
	}
	td, ok := r.types.Get(name)
	if !ok {
		return missing(s.endpoint, "can't find type %q used by %s", name, s.role)
	}
	def, _ := r.defs.reserve(name)
	if err := r.fill(def, td, s.endpoint); err != nil {
		return err
	}
	r.log.Debug().Str("type", name).Str("endpoint", s.endpoint).Msg("registered schema")
	return nil
}

func (r *resolver) fill(def *openapi3.Schema, td *model.TypeDescription, endpoint string) error {
	if td.Kind == model.Enum {
		def.Type = &openapi3.Types{openapi3.TypeString}
		values := td.CaseValues()
		def.Enum = make([]any, len(values))
		for i, v := range values {
			def.Enum[i] = v
		}
		return nil
	}
	def.Type = &openapi3.Types{openapi3.TypeObject}
	def.Properties = make(openapi3.Schemas, td.InstanceProperties.Len())
	for _, p := range td.InstanceProperties.All() {
		e := typeexpr.Parse(p.Type)
		ps, err := r.schema(e, site{endpoint, fmt.Sprintf("property %q of %s", p.Name, td.Name)})
		if err != nil {
			return err
		}
		def.Properties[p.Name] = ps
		if !e.IsOptional() {
			def.Required = append(def.Required, p.Name)
		}
	}
	return nil
}

// registerPage adds the paginated envelope around inner, along with the
// shared page metadata component. Both names are generated, so a declared
// type already using either of them is an error.
func (r *resolver) registerPage(inner typeexpr.Expr, s site) (string, error) {
	name := pageName(inner)
	if _, ok := r.types.Get(name); ok {
		return "", collision(s.endpoint, "envelope of %s is named %q, which is a declared type", inner.String(), name)
	}
	if _, ok := r.types.Get(PageMetadataName); ok {
		return "", collision(s.endpoint, "page metadata is named %q, which is a declared type", PageMetadataName)
	}
	if r.defs.Has(name) {
		return name, nil
	}
	items, err := r.schema(inner, s)
	if err != nil {
		return "", err
	}
	r.registerPageMetadata()
	def, ok := r.defs.reserve(name)
	if !ok {
		// inner referred back to its own page while resolving.
		return name, nil
	}
	arr := openapi3.NewArraySchema()
	arr.Items = items
	def.Type = &openapi3.Types{openapi3.TypeObject}
	def.Properties = openapi3.Schemas{
		"items":    arr.NewRef(),
		"metadata": openapi.RefTo(PageMetadataName),
	}
	def.Required = []string{"items", "metadata"}
	return name, nil
}

func (r *resolver) registerPageMetadata() {
	def, ok := r.defs.reserve(PageMetadataName)
	if !ok {
		return
	}
	def.Type = &openapi3.Types{openapi3.TypeObject}
	def.Properties = openapi3.Schemas{
		"page":  openapi3.NewIntegerSchema().NewRef(),
		"per":   openapi3.NewIntegerSchema().NewRef(),
		"total": openapi3.NewIntegerSchema().NewRef(),
	}
	def.Required = []string{"page", "per", "total"}
}
