package resolve

import "github.com/getkin/kin-openapi/openapi3"

// Definitions is the write-once table of component schemas. A name is
// reserved before its members are resolved, which is what stops recursion on
// self-referencing and diamond-shaped type graphs. It is not safe for
// concurrent use; resolving endpoints in parallel would need the
// check-and-reserve step to be made atomic per name.
type Definitions struct {
	schemas openapi3.Schemas
	order   []string
}

// NewDefinitions returns an empty table.
func NewDefinitions() *Definitions {
	return &Definitions{schemas: openapi3.Schemas{}}
}

// Has reports whether name has been registered or reserved.
func (d *Definitions) Has(name string) bool {
	_, ok := d.schemas[name]
	return ok
}

// Get returns the schema registered under name.
func (d *Definitions) Get(name string) (*openapi3.Schema, bool) {
	s, ok := d.schemas[name]
	if !ok {
		return nil, false
	}
	return s.Value, true
}

// Len returns the number of registered schemas.
func (d *Definitions) Len() int { return len(d.schemas) }

// Schemas returns the underlying table.
func (d *Definitions) Schemas() openapi3.Schemas { return d.schemas }

// reserve inserts an empty schema under name for the caller to fill in.
// It returns false, and no schema, when name is already taken.
func (d *Definitions) reserve(name string) (*openapi3.Schema, bool) {
	if d.Has(name) {
		return nil, false
	}
	s := &openapi3.Schema{}
	d.schemas[name] = s.NewRef()
	d.order = append(d.order, name)
	return s, true
}

// mark returns a point that rollback can return the table to.
func (d *Definitions) mark() int { return len(d.order) }

// rollback drops every name reserved since m. Schemas registered after m may
// reference each other, so they are discarded together.
func (d *Definitions) rollback(m int) {
	for _, name := range d.order[m:] {
		delete(d.schemas, name)
	}
	d.order = d.order[:m]
}
