package middleware

import (
	"database/sql"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
	"github.com/nwmlabs/nwm-api/internal/platform/logger"
	"github.com/nwmlabs/nwm-api/internal/store"
)

// Transaction opens a request-scoped transaction handle and guarantees its
// closure on every exit path: normal completion, error response, panic, or
// client disconnect. The scope commits only when the request produced no
// error response; anything else rolls back.
func Transaction(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			scope, err := store.Open(ctx, db)
			if err != nil {
				shared.RespondWithError(w, r, err)
				return
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx = shared.WithTx(ctx, scope.Tx())

			defer func() {
				p := recover()
				// An error response, a panic, or a dropped connection all
				// mean the transaction must not commit.
				succeeded := p == nil &&
					ww.Status() < http.StatusBadRequest &&
					ctx.Err() == nil

				if closeErr := scope.Close(ctx, succeeded); closeErr != nil {
					log.Error("transaction scope close failed",
						slog.String("error", closeErr.Error()))
				}
				if p != nil {
					panic(p)
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
