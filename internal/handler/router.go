package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"stayauth/internal/container"
	"stayauth/internal/middleware"
	"stayauth/pkg/errors"
)

// NewRouter configures and returns the HTTP router
func NewRouter(container *container.Container) *chi.Mux {
	cfg := container.GetConfig()
	log := container.GetLogger()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID())
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	// Bounded above the verifier timeout so a slow verifier still falls back
	r.Use(chiMiddleware.Timeout(cfg.VerifierTimeout + 30*time.Second))

	healthHandler := NewHealthHandler(container)
	sessionHandler := NewSessionHandler(container)
	connectivityHandler := NewConnectivityHandler(container)
	workerHandler := NewWorkerHandler(container)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/login", sessionHandler.Login)
			r.Get("/", sessionHandler.Current)
			r.Delete("/", sessionHandler.Logout)
		})

		r.Get("/worker/auth-data", workerHandler.AuthData)

		r.Route("/connectivity", func(r chi.Router) {
			r.Get("/", connectivityHandler.Status)
			r.Post("/events", connectivityHandler.Event)
			r.Post("/reachability", connectivityHandler.Reachability)
			r.Post("/dismiss", connectivityHandler.Dismiss)
		})

		// Server-issued sessions only
		r.Group(func(r chi.Router) {
			r.Use(middleware.VerifiedOnly(container.SessionCache, log))
			r.Get("/user/profile", sessionHandler.GetProfile)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteError(w, req, errors.NewNotFoundError("Endpoint not found"), log)
	})

	log.Info("Router configured successfully")
	return r
}
