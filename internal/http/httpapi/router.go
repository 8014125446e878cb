package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/marketdesk/server/internal/http/handlers"
	"github.com/marketdesk/server/internal/middleware"
)

type Options struct {
	Logger             zerolog.Logger
	AllowedOrigins     []string
	RateLimitPerMinute int
	DefaultLocale      string
	CountryLookup      middleware.CountryLookup
	Tokens             *middleware.TokenIssuer
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/metrics", app.Metrics)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))
		}
		r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))

		r.Post("/v1/demo/sessions", app.DemoSessionCreate)

		r.Route("/v1/usage", func(r chi.Router) {
			r.Use(middleware.Session(opts.Tokens))
			r.Get("/", app.UsageSnapshot)
			r.Get("/{feature}", app.FeatureUsage)
			r.Post("/{feature}/increment", app.UsageIncrement)
		})
	})

	return r
}
