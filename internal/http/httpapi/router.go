package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Adel-MESRATI/Nexus-AI/internal/http/handlers"
	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
	"github.com/Adel-MESRATI/Nexus-AI/internal/middleware"
)

// Options carries the cross-cutting settings the router needs.
type Options struct {
	Identity        middleware.IdentityOptions
	AllowedOrigins  []string
	RateLimitPerMin int
	Logger          infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Identity))
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.Post("/generate", app.Generate)
		r.Post("/enhance", app.Enhance)
		r.Get("/presets", app.Presets)
	})

	return r
}
