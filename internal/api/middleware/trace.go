package middleware

import (
	"log/slog"
	"net/http"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
	"github.com/nwmlabs/nwm-api/internal/platform/logger"
	"github.com/nwmlabs/nwm-api/internal/query"
)

// Trace adds a trace ID and a request-scoped logger to the context, and
// parses the pretty flag so response formatting can honor it on every
// route. Applied early so all later stages log with the trace ID.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithContext(ctx, log)
		ctx = shared.WithPretty(ctx, query.ParseBool(r.URL.Query().Get("pretty")))

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
