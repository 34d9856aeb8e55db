package record

// Type identifies the wire/storage type of a declared field.
type Type int

const (
	String Type = iota
	Integer
	Boolean
	UUID
	Timestamp
	Document
)

// String returns the type tag used in introspection output.
func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case UUID:
		return "uuid"
	case Timestamp:
		return "utc-timestamp"
	case Document:
		return "json-document"
	default:
		return "unknown"
	}
}

// Field describes one declared field of a record type.
type Field struct {
	// Name is the wire and column name of the field.
	Name string

	// Type is the field's type tag, driving codec conversions.
	Type Type

	// Nullable marks the field as optional (may hold null).
	Nullable bool

	// PrimaryKey marks the record's key field.
	PrimaryKey bool

	// Generated marks server-owned fields that clients may never set.
	Generated bool

	// Hidden fields are accepted on input but never serialized to the wire.
	Hidden bool

	// HasDefault marks non-nullable fields that fall back to a server-side
	// default when absent from a create document.
	HasDefault bool

	// Enum lists the closed value set for string fields; nil means open.
	Enum []string
}

// AllowsValue reports whether v is a member of the field's enum set.
// Fields without an enum set allow any value.
func (f Field) AllowsValue(v string) bool {
	if len(f.Enum) == 0 {
		return true
	}
	for _, e := range f.Enum {
		if e == v {
			return true
		}
	}
	return false
}

// Schema is the static field-descriptor table for one record type.
// Mapper and query code operate generically over this table instead of
// reflecting on struct fields.
type Schema struct {
	Name   string
	Table  string
	Fields []Field
}

// Field looks up a declared field by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PrimaryKey returns the record type's key field.
func (s *Schema) PrimaryKey() Field {
	for _, f := range s.Fields {
		if f.PrimaryKey {
			return f
		}
	}
	return Field{}
}

// Columns returns all field names in declaration order.
func (s *Schema) Columns() []string {
	cols := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// RequiredFields returns the non-nullable, non-key field names that a
// client must supply when creating a record. Server-generated and
// server-defaulted fields are excluded since clients need not provide them.
func (s *Schema) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if !f.Nullable && !f.PrimaryKey && !f.Generated && !f.HasDefault {
			names = append(names, f.Name)
		}
	}
	return names
}

// OptionalFields returns the field names a client may supply but need not:
// nullable fields and fields with a server-side default.
func (s *Schema) OptionalFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Nullable || f.HasDefault {
			names = append(names, f.Name)
		}
	}
	return names
}

// Record is a typed entity whose declared fields are described by a Schema.
// Get returns nil for null-valued fields. Set accepts a typed value matching
// the field's type tag, or nil to reset the field to its default.
type Record interface {
	Schema() *Schema
	Get(field string) any
	Set(field string, value any) error
}
