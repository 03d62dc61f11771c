package typeexpr

// JSONType is the JSON Schema type, and optional format, a primitive maps to.
type JSONType struct {
	Type   string
	Format string
}

var primitives = map[string]JSONType{
	"Bool":   {Type: "boolean"},
	"Int":    {Type: "integer"},
	"Int8":   {Type: "integer"},
	"Int16":  {Type: "integer"},
	"Int32":  {Type: "integer", Format: "int32"},
	"Int64":  {Type: "integer", Format: "int64"},
	"UInt":   {Type: "integer"},
	"UInt8":  {Type: "integer"},
	"UInt16": {Type: "integer"},
	"UInt32": {Type: "integer", Format: "int32"},
	"UInt64": {Type: "integer", Format: "int64"},
	"String": {Type: "string"},
	"UUID":   {Type: "string", Format: "uuid"},
	"URL":    {Type: "string", Format: "uri"},
	"Date":   {Type: "string", Format: "date-time"},
	"Double": {Type: "number", Format: "double"},
	"Float":  {Type: "number", Format: "float"},

	// JSON names map to themselves so cleaning is idempotent.
	"boolean": {Type: "boolean"},
	"integer": {Type: "integer"},
	"string":  {Type: "string"},
	"number":  {Type: "number"},
}

// Lookup returns the JSON type for a primitive type name.
func Lookup(name string) (JSONType, bool) {
	jt, ok := primitives[name]
	return jt, ok
}

// IsPrimitive reports whether name maps to a JSON primitive.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}
