package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"moul.io/chizap"

	"github.com/upb/casting-agency/app"
	"github.com/upb/casting-agency/internal/auth"
	"github.com/upb/casting-agency/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chizap.New(deps.Logger, &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))
	r.Use(chimw.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	if cfg.RateLimit.Enabled {
		r.Use(httprate.Limit(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				_ = utils.WriteTooManyRequests(w)
			}),
		))
	}

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	gate := deps.AuthMiddleware

	actors := deps.ActorHandler
	r.Get("/actors", gate.RequirePermission(auth.ReadActors, actors.HandleList))
	r.Post("/actors", gate.RequirePermission(auth.CreateActors, actors.HandleCreate))
	r.Patch("/actors/{id}", gate.RequirePermission(auth.EditActors, actors.HandleUpdate))
	r.Delete("/actors/{id}", gate.RequirePermission(auth.DeleteActors, actors.HandleDelete))

	movies := deps.MovieHandler
	r.Get("/movies", gate.RequirePermission(auth.ReadMovies, movies.HandleList))
	r.Post("/movies", gate.RequirePermission(auth.CreateMovies, movies.HandleCreate))
	r.Patch("/movies/{id}", gate.RequirePermission(auth.EditMovies, movies.HandleUpdate))
	r.Delete("/movies/{id}", gate.RequirePermission(auth.DeleteMovies, movies.HandleDelete))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w)
	})

	return r
}
