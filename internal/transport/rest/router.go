package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/heartmarshall/user-registry/internal/config"
	"github.com/heartmarshall/user-registry/internal/transport/middleware"
)

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	Users   *UserHandler
	Health  *HealthHandler
	Limiter *middleware.RateLimiter
	Logger  *slog.Logger

	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
}

// NewRouter builds the HTTP routing tree. Probes are exempt from rate
// limiting; every other route is limited per client IP.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.CORS(d.CORS))

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Limit(d.RateLimit.RequestsPerMinute))
		}

		r.Get("/", d.Users.Index)
		r.Get("/index", d.Users.Index)
		r.Get("/users", d.Users.List)
		r.Post("/user", d.Users.Create)
		r.Route("/user/{name}", func(r chi.Router) {
			r.Get("/", d.Users.Get)
			r.Put("/", d.Users.Update)
			r.Delete("/", d.Users.Delete)
		})
	})

	return r
}
