package middleware

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 64 * 1024

// ParseBody reads and decodes a JSON request body for mutating methods,
// stashing the parsed document in the context. An absent body is left for
// per-operation validation; a malformed or oversized one terminates the
// request here.
func ParseBody(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > maxBytes {
				shared.RespondWithError(w, r, shared.ErrBodyTooLarge)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					shared.RespondWithError(w, r, shared.ErrBodyTooLarge)
					return
				}
				shared.RespondWithError(w, r, shared.ErrMalformedBody)
				return
			}

			if len(body) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if !utf8.Valid(body) {
				shared.RespondWithError(w, r, shared.ErrMalformedBody)
				return
			}

			var doc any
			if err := json.Unmarshal(body, &doc); err != nil {
				shared.RespondWithError(w, r, shared.ErrMalformedBody)
				return
			}

			ctx := shared.WithBody(r.Context(), doc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
