package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"fotomagic/internal/http/handlers"
	"fotomagic/internal/middleware"
)

// NewRouter wires the API surface.
func NewRouter(app *handlers.App, logger zerolog.Logger, rateLimitPerMin int) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.RateLimit(rateLimitPerMin, time.Minute),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/generations", app.GenerationsCreate)
		r.Get("/motions", app.MotionsList)
		r.Get("/rates", app.RatesList)
		r.Post("/payments", app.PaymentsCreate)
		r.Delete("/payments/{userID}", app.PaymentsCancel)
		r.Post("/broadcasts", app.BroadcastsCreate)
	})

	return r
}
