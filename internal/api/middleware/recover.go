package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
	"github.com/nwmlabs/nwm-api/internal/platform/logger"
)

// Recover converts a handler panic into the uniform 500 document. The
// stack trace stays in the server log; the client sees only the generic
// document. Placed inside the transaction stage so the scope still
// observes the panic and rolls back.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.FromContext(r.Context()).Error("panic while handling request",
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())))
				shared.RespondWithError(w, r, fmt.Errorf("panic: %v", p))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
