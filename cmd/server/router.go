package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/quill-api/internal/api/middleware"
	"github.com/phrazzld/quill-api/internal/platform/metrics"
)

func (app *application) setupRouter() http.Handler {
	return newRouter(app.handlers, apiMiddleware.NewAuthMiddleware(app.jwtService), app.limiter)
}

// newRouter mounts the API routes. Every /api route is rate limited; all but
// the auth endpoints also require a bearer token.
func newRouter(h handlers, authMiddleware *apiMiddleware.AuthMiddleware, limiter *apiMiddleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Post("/auth/register", h.auth.Register)
			r.Post("/auth/login", h.auth.Login)
			r.Post("/auth/refresh", h.auth.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(limiter.Handler)

			r.Post("/decks", h.decks.CreateDeck)
			r.Get("/decks", h.decks.ListDecks)
			r.Post("/decks/{id}/cards", h.decks.CreateCard)

			r.Get("/cards/due", h.reviews.GetDueCards)
			r.Put("/cards/{id}", h.decks.UpdateCard)
			r.Delete("/cards/{id}", h.decks.DeleteCard)
			r.Get("/cards/{id}/preview", h.reviews.PreviewIntervals)
			r.Post("/cards/{id}/review", h.reviews.SubmitReview)
			r.Post("/cards/{id}/postpone", h.reviews.PostponeReview)

			r.Post("/journal", h.journal.CreateEntry)
			r.Get("/journal", h.journal.ListEntries)
			r.Get("/journal/{id}", h.journal.GetEntry)

			r.Get("/proficiency/forecast", h.journal.GetForecast)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
