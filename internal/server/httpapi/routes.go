package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/users", s.registerUser)

	r.Route("/auth", func(r chi.Router) {
		r.With(s.loginLimiter()).Post("/token", s.login)
		r.Post("/refresh", s.refresh)
		r.With(s.requireAuth).Post("/logout", s.logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/users/me", s.currentUser)

		r.Get("/videos", s.listVideos)
		r.Post("/videos", s.addVideo)
		r.Get("/videos/{id}", s.getVideo)
		r.Delete("/videos/{id}", s.deleteVideo)
		r.Get("/videos/{id}/thumbnail", s.videoThumbnail)
	})

	return r
}

func (s *Server) loginLimiter() func(http.Handler) http.Handler {
	if s.opts.LoginRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.opts.LoginRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "too many login attempts")
		}),
	)
}
