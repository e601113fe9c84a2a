package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mingxia/ganzhi-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Derivation endpoints are public; the profile store sits behind the
// API key.
func SetupRoutes(handlers *Handlers, cfg *config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(log))
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(CORSMiddleware)

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chart", handlers.BuildChart)
		r.Get("/relation", handlers.GetRelation)
		r.Get("/days", handlers.GetDays)

		r.Route("/profiles", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, log))

			r.Post("/", handlers.CreateProfile)
			r.Get("/", handlers.ListProfiles)
			r.Get("/{id}", handlers.GetProfile)
			r.Delete("/{id}", handlers.DeleteProfile)
			r.Get("/{id}/days", handlers.GetProfileDays)
		})
	})

	return r
}
