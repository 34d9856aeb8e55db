package record

import (
	"errors"
	"fmt"
)

// Mapper errors.
var (
	// ErrUnknownField is returned when an input document names a field the
	// record type does not declare.
	ErrUnknownField = errors.New("unknown field")

	// ErrReadOnlyField is returned when an input document tries to set a
	// server-generated field.
	ErrReadOnlyField = errors.New("field is read-only")

	// ErrMissingField is returned when a required field is absent from an
	// input document.
	ErrMissingField = errors.New("missing required field")
)

// ToWire projects a record into an ordered document, iterating the declared
// fields in declaration order. A field is included when included is empty or
// contains it, and it is not in excluded. Hidden fields never appear.
func ToWire(r Record, excluded, included map[string]struct{}) (*OrderedDoc, error) {
	doc := NewOrderedDoc()
	for _, f := range r.Schema().Fields {
		if f.Hidden {
			continue
		}
		if len(included) > 0 {
			if _, ok := included[f.Name]; !ok {
				continue
			}
		}
		if _, ok := excluded[f.Name]; ok {
			continue
		}

		wire, err := Encode(r.Get(f.Name), f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		doc.Set(f.Name, wire)
	}
	return doc, nil
}

// FromWire merges an input mapping into a record. Declared fields present in
// the mapping are decoded and assigned; absent fields keep their current
// value. The mapping must already have passed ValidateDocument.
func FromWire(doc map[string]any, r Record) error {
	for _, f := range r.Schema().Fields {
		raw, present := doc[f.Name]
		if !present {
			continue
		}
		v, err := Decode(raw, f.Type)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if err := r.Set(f.Name, v); err != nil {
			return err
		}
	}
	return nil
}

// Replace resets every declared field except the primary key to its
// default before merging, giving full-replacement semantics.
func Replace(doc map[string]any, r Record) error {
	for _, f := range r.Schema().Fields {
		if f.PrimaryKey {
			continue
		}
		if err := r.Set(f.Name, nil); err != nil {
			return err
		}
	}
	return FromWire(doc, r)
}

// ValidateDocument checks an input mapping against a schema before any
// mutation happens: undeclared fields and server-generated fields are
// rejected outright, and when requireAll is set every client-suppliable
// required field must be present and non-null.
func ValidateDocument(s *Schema, doc map[string]any, requireAll bool) error {
	for name := range doc {
		f, ok := s.Field(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		if f.Generated || f.PrimaryKey {
			return fmt.Errorf("%w: %q", ErrReadOnlyField, name)
		}
	}

	if requireAll {
		for _, name := range s.RequiredFields() {
			if v, present := doc[name]; !present || v == nil {
				return fmt.Errorf("%w: %q", ErrMissingField, name)
			}
		}
	}
	return nil
}
