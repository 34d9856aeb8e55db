package query

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/nwmlabs/nwm-api/internal/record"
)

// ErrInvalidFilter is returned when a filter document cannot be applied to
// the record type being queried.
var ErrInvalidFilter = errors.New("invalid filter")

// Op is a comparison operator in a filter predicate.
type Op string

const (
	OpEq   Op = "eq"
	OpNe   Op = "ne"
	OpGt   Op = "gt"
	OpGte  Op = "gte"
	OpLt   Op = "lt"
	OpLte  Op = "lte"
	OpLike Op = "like"
	OpIn   Op = "in"
)

var knownOps = map[Op]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true,
	OpLt: true, OpLte: true, OpLike: true, OpIn: true,
}

// Predicate is one (field, operator, value) comparison. Predicates combine
// conjunctively; there is no OR.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Filter is an ordered conjunction of predicates.
type Filter struct {
	Predicates []Predicate
}

// IsZero reports whether the filter has no predicates.
func (f Filter) IsZero() bool {
	return len(f.Predicates) == 0
}

// ParseFilter parses a JSON-encoded filter object against a schema. Keys are
// either a bare field name (equality) or "field.op". Values are decoded to
// the field's declared type. Undeclared fields, unrecognized operators, and
// enum values outside the field's closed set are all rejected; a filter is
// never silently dropped.
func ParseFilter(raw string, s *record.Schema) (Filter, error) {
	var filter Filter
	if strings.TrimSpace(raw) == "" {
		return filter, nil
	}

	iter := jsoniter.ParseString(jsoniter.ConfigCompatibleWithStandardLibrary, raw)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return filter, fmt.Errorf("%w: expected a JSON object", ErrInvalidFilter)
	}

	var parseErr error
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		value := it.Read()

		pred, err := buildPredicate(key, value, s)
		if err != nil {
			parseErr = err
			return false
		}
		filter.Predicates = append(filter.Predicates, pred)
		return true
	})

	if parseErr != nil {
		return Filter{}, parseErr
	}
	if iter.Error != nil {
		return Filter{}, fmt.Errorf("%w: malformed JSON", ErrInvalidFilter)
	}
	return filter, nil
}

func buildPredicate(key string, raw any, s *record.Schema) (Predicate, error) {
	name := key
	op := OpEq
	if i := strings.LastIndex(key, "."); i >= 0 {
		name = key[:i]
		op = Op(strings.ToLower(key[i+1:]))
		if !knownOps[op] {
			return Predicate{}, fmt.Errorf("%w: unrecognized operator %q", ErrInvalidFilter, key[i+1:])
		}
	}

	field, ok := s.Field(name)
	if !ok {
		return Predicate{}, fmt.Errorf("%w: undeclared field %q", ErrInvalidFilter, name)
	}

	if op == OpLike && field.Type != record.String {
		return Predicate{}, fmt.Errorf("%w: operator %q requires a string field", ErrInvalidFilter, op)
	}

	if op == OpIn {
		items, ok := raw.([]any)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: operator %q requires an array value", ErrInvalidFilter, op)
		}
		values := make([]any, 0, len(items))
		for _, item := range items {
			v, err := decodeFilterValue(item, field)
			if err != nil {
				return Predicate{}, err
			}
			values = append(values, v)
		}
		return Predicate{Field: name, Op: op, Value: values}, nil
	}

	v, err := decodeFilterValue(raw, field)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: name, Op: op, Value: v}, nil
}

func decodeFilterValue(raw any, field record.Field) (any, error) {
	v, err := record.Decode(raw, field.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidFilter, field.Name, err)
	}

	// Enum-typed fields have a closed value set; a member outside it is a
	// client error, not a legitimately non-matching value.
	if field.Type == record.String && v != nil {
		if str, ok := v.(string); ok && !field.AllowsValue(str) {
			return nil, fmt.Errorf("%w: field %q does not allow value %q", ErrInvalidFilter, field.Name, str)
		}
	}
	return v, nil
}
