package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nwmlabs/nwm-api/internal/record"
)

// ErrInvalidSort is returned when an order_by expression cannot be applied
// to the record type being queried.
var ErrInvalidSort = errors.New("invalid sort")

// SortKey is one (field, direction) pair.
type SortKey struct {
	Field      string
	Descending bool
}

// Sort is an ordered sequence of sort keys; the first key is primary.
type Sort struct {
	Keys []SortKey
}

// IsZero reports whether no sort keys were given.
func (s Sort) IsZero() bool {
	return len(s.Keys) == 0
}

// ParseSort parses a comma-separated order_by expression. Each entry is a
// field name optionally followed by a case-insensitive asc/desc token;
// unsuffixed fields sort ascending. Undeclared fields are rejected.
func ParseSort(raw string, schema *record.Schema) (Sort, error) {
	var sort Sort
	if strings.TrimSpace(raw) == "" {
		return sort, nil
	}

	for _, entry := range strings.Split(raw, ",") {
		tokens := strings.Fields(entry)
		if len(tokens) == 0 || len(tokens) > 2 {
			return Sort{}, fmt.Errorf("%w: malformed entry %q", ErrInvalidSort, entry)
		}

		name := tokens[0]
		if _, ok := schema.Field(name); !ok {
			return Sort{}, fmt.Errorf("%w: undeclared field %q", ErrInvalidSort, name)
		}

		key := SortKey{Field: name}
		if len(tokens) == 2 {
			switch strings.ToLower(tokens[1]) {
			case "asc":
			case "desc":
				key.Descending = true
			default:
				return Sort{}, fmt.Errorf("%w: direction must be asc or desc, got %q", ErrInvalidSort, tokens[1])
			}
		}
		sort.Keys = append(sort.Keys, key)
	}
	return sort, nil
}
