package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nwmlabs/nwm-api/internal/api"
	apimw "github.com/nwmlabs/nwm-api/internal/api/middleware"
	"github.com/nwmlabs/nwm-api/internal/domain"
)

// setupRouter wires the middleware pipeline and routes. Stage order
// matters: CORS headers and tracing first so every response carries them,
// then the transaction scope, then negotiation and body parsing, then the
// resource handlers.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.CORS)
	r.Use(apimw.Trace)

	userHandler := api.NewUserHandler(app.userStore, app.userService, app.logger)
	metaHandler := api.NewMetaHandler(domain.UserSchema)

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.Transaction(app.db))
		r.Use(apimw.Recover)
		r.Use(apimw.RequireJSON)
		r.Use(apimw.ParseBody(app.config.Request.MaxBodyBytes))

		r.Get("/meta", metaHandler.Get)

		r.Route("/users", func(r chi.Router) {
			r.With(apimw.QueryShaping(domain.UserSchema)).Get("/", userHandler.List)
			r.Post("/", userHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(apimw.RequireHexID("id"))
				r.Get("/", userHandler.Get)
				r.Put("/", userHandler.Replace)
				r.Patch("/", userHandler.Patch)
				r.Delete("/", userHandler.Delete)
				r.Post("/activate", userHandler.Activate)
				r.Post("/deactivate", userHandler.Deactivate)
				r.Post("/invite", api.NotImplemented)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
