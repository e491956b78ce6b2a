package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/careconnect/guardian-api/internal/http/middleware"
	"github.com/careconnect/guardian-api/internal/identity"
	"github.com/careconnect/guardian-api/internal/profiles"
	"github.com/careconnect/guardian-api/internal/visits"
	"github.com/careconnect/guardian-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	AuthHandler     *identity.Handler
	Authenticator   httpmiddleware.Authenticator
	VisitsHandler   *visits.Handler
	ProfilesHandler *profiles.Handler
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			public.Post("/auth/signup", cfg.AuthHandler.SignUp)
			public.Post("/auth/login", cfg.AuthHandler.SignIn)
		}
	})

	// Authenticated endpoints
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(cfg.Authenticator, cfg.Logger))

		if cfg.AuthHandler != nil {
			private.Post("/auth/logout", cfg.AuthHandler.SignOut)
			private.Get("/auth/me", cfg.AuthHandler.Me)
		}

		if cfg.VisitsHandler != nil {
			private.Route("/visits", func(v chi.Router) {
				v.Post("/", cfg.VisitsHandler.Create)
				v.Get("/", cfg.VisitsHandler.List)
				v.Get("/today", cfg.VisitsHandler.Today)
				v.Post("/sweep", cfg.VisitsHandler.Sweep)
				v.Route("/{id}", func(one chi.Router) {
					one.Get("/", cfg.VisitsHandler.Get)
					one.Put("/", cfg.VisitsHandler.Update)
					one.Delete("/", cfg.VisitsHandler.Delete)
					one.Put("/status", cfg.VisitsHandler.UpdateStatus)
				})
			})
			private.Get("/alerts", cfg.VisitsHandler.Alerts)
			private.Post("/alerts/{id}/acknowledge", cfg.VisitsHandler.Acknowledge)
		}

		if cfg.ProfilesHandler != nil {
			private.Route("/profile", func(p chi.Router) {
				p.Get("/", cfg.ProfilesHandler.Get)
				p.Post("/", cfg.ProfilesHandler.Complete)
				p.Put("/", cfg.ProfilesHandler.Update)
				p.Post("/photo", cfg.ProfilesHandler.UploadPhoto)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
