package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ErrInvalidPage is returned when pagination parameters are negative or not
// integers.
var ErrInvalidPage = errors.New("invalid page")

// Page is a normalized half-open row range. Nil means unset; when both
// limit and offset are nil no limiting is applied.
type Page struct {
	Limit  *int64
	Offset *int64
}

// IsZero reports whether no limiting is requested.
func (p Page) IsZero() bool {
	return p.Limit == nil && p.Offset == nil
}

// ParsePage reads limit/offset and start/end from the request parameters.
// Both styles express a half-open range; when both are supplied, start/end
// takes precedence.
func ParsePage(values url.Values) (Page, error) {
	limit, err := pageInt(values, "limit")
	if err != nil {
		return Page{}, err
	}
	offset, err := pageInt(values, "offset")
	if err != nil {
		return Page{}, err
	}
	start, err := pageInt(values, "start")
	if err != nil {
		return Page{}, err
	}
	end, err := pageInt(values, "end")
	if err != nil {
		return Page{}, err
	}

	if start != nil || end != nil {
		return slicePage(start, end)
	}
	return Page{Limit: limit, Offset: offset}, nil
}

// slicePage converts a [start, end) slice into limit/offset form.
func slicePage(start, end *int64) (Page, error) {
	var page Page
	if start != nil {
		page.Offset = start
	}
	if end != nil {
		from := int64(0)
		if start != nil {
			from = *start
		}
		if *end < from {
			return Page{}, fmt.Errorf("%w: end %d precedes start %d", ErrInvalidPage, *end, from)
		}
		n := *end - from
		page.Limit = &n
	}
	return page, nil
}

func pageInt(values url.Values, name string) (*int64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidPage, name, raw)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidPage, name, n)
	}
	return &n, nil
}
