package middleware

import (
	"net/http"
	"strings"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
)

// RequireJSON verifies content negotiation before any work happens: the
// client must accept JSON responses, and mutating requests carrying a body
// must declare it as JSON.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r.Header.Get("Accept")) {
			shared.RespondWithError(w, r, shared.ErrNotAcceptable)
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if r.ContentLength != 0 && !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
				shared.RespondWithError(w, r, shared.ErrUnsupportedMediaType)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// acceptsJSON implements a minimal Accept check: an absent header or a
// wildcard counts as acceptance.
func acceptsJSON(accept string) bool {
	if accept == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mediaType {
		case "application/json", "application/*", "*/*":
			return true
		}
	}
	return false
}
