// Package query translates declarative filter/sort/pagination parameters
// into SQL. Parsing validates against a record schema; Apply composes goqu
// expressions without executing anything, leaving execution to the caller's
// transaction handle.
package query

import (
	"net/url"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/nwmlabs/nwm-api/internal/record"
)

// Options carries every query-shaping parameter extracted from a request.
type Options struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

// ParseOptions parses the q/where, order_by, and pagination parameters
// against a schema. The filter may arrive under either q or where; q wins
// when both are present.
func ParseOptions(values url.Values, schema *record.Schema) (Options, error) {
	var opts Options

	rawFilter := values.Get("q")
	if rawFilter == "" {
		rawFilter = values.Get("where")
	}
	filter, err := ParseFilter(rawFilter, schema)
	if err != nil {
		return Options{}, err
	}
	opts.Filter = filter

	sort, err := ParseSort(values.Get("order_by"), schema)
	if err != nil {
		return Options{}, err
	}
	opts.Sort = sort

	page, err := ParsePage(values)
	if err != nil {
		return Options{}, err
	}
	opts.Page = page

	return opts, nil
}

// ParseBool parses boolean-ish query parameters (pretty and friends).
// Unrecognized or absent values are false rather than an error.
func ParseBool(raw string) bool {
	switch raw {
	case "y", "yes", "true", "on", "1":
		return true
	default:
		return false
	}
}

// Apply shapes a select statement with the parsed options. goqu datasets
// are immutable, so the inputs are never mutated.
func Apply(ds *goqu.SelectDataset, opts Options) *goqu.SelectDataset {
	ds = ApplyFilter(ds, opts.Filter)

	if !opts.Sort.IsZero() {
		ordered := make([]exp.OrderedExpression, 0, len(opts.Sort.Keys))
		for _, key := range opts.Sort.Keys {
			if key.Descending {
				ordered = append(ordered, goqu.I(key.Field).Desc())
			} else {
				ordered = append(ordered, goqu.I(key.Field).Asc())
			}
		}
		ds = ds.Order(ordered...)
	}

	if opts.Page.Limit != nil {
		if *opts.Page.Limit == 0 {
			// goqu treats Limit(0) as ClearLimit; a zero-width range must
			// select no rows, not all of them.
			ds = ds.Where(goqu.L("FALSE"))
		} else {
			ds = ds.Limit(uint(*opts.Page.Limit))
		}
	}
	if opts.Page.Offset != nil {
		ds = ds.Offset(uint(*opts.Page.Offset))
	}
	return ds
}

// ApplyFilter adds the filter's predicates as a conjunctive where clause.
func ApplyFilter(ds *goqu.SelectDataset, filter Filter) *goqu.SelectDataset {
	for _, p := range filter.Predicates {
		col := goqu.C(p.Field)
		switch p.Op {
		case OpEq:
			ds = ds.Where(col.Eq(p.Value))
		case OpNe:
			ds = ds.Where(col.Neq(p.Value))
		case OpGt:
			ds = ds.Where(col.Gt(p.Value))
		case OpGte:
			ds = ds.Where(col.Gte(p.Value))
		case OpLt:
			ds = ds.Where(col.Lt(p.Value))
		case OpLte:
			ds = ds.Where(col.Lte(p.Value))
		case OpLike:
			ds = ds.Where(col.Like(p.Value))
		case OpIn:
			ds = ds.Where(col.In(p.Value.([]any)...))
		}
	}
	return ds
}
