package middleware

import "net/http"

// CORS attaches the cross-origin headers to every response, error
// responses included. It runs first so no early-terminating stage can skip
// the headers.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		next.ServeHTTP(w, r)
	})
}
