package middleware

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
	"github.com/nwmlabs/nwm-api/internal/query"
	"github.com/nwmlabs/nwm-api/internal/record"
)

// hexIDPattern matches a UUID rendered as 32 hex digits without dashes,
// the only identifier form accepted in paths.
var hexIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// QueryShaping parses the filter/sort/pagination parameters against the
// resource's schema and stashes them in the context, so handlers never
// touch raw query strings. Invalid parameters terminate the request before
// any resource logic runs.
func QueryShaping(schema *record.Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			opts, err := query.ParseOptions(r.URL.Query(), schema)
			if err != nil {
				shared.RespondWithError(w, r, err)
				return
			}
			ctx := shared.WithQueryOptions(r.Context(), opts)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireHexID rejects requests whose named path parameter is not a
// 32-character hex identifier, before any resource logic runs.
func RequireHexID(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := chi.URLParam(r, param)
			if !hexIDPattern.MatchString(value) {
				shared.RespondWithError(w, r, fmt.Errorf(
					"%w: %q must be a 32-character hex identifier", shared.ErrInvalidParam, param))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
