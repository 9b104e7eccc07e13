// Package http provides the HTTP delivery layer for the URL shortener service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/snip/docs"
	"github.com/vadimbarashkov/snip/internal/metrics"
	"github.com/vadimbarashkov/snip/internal/validation"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configures the router.
type Options struct {
	// BaseURL prefixes short links in responses. Derived from the request when empty.
	BaseURL        string
	AllowedOrigins []string
}

// ReservedShortCodes returns the first path segments taken by fixed routes.
// A short code equal to one of them would never be reachable.
func ReservedShortCodes() []string {
	return []string{"shorten", "url", "stats", "health", "metrics", "swagger", "docs"}
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
func NewRouter(logger *httplog.Logger, m *metrics.Metrics, urlUseCase urlUseCase, opts Options) *chi.Mux {
	r := chi.NewRouter()

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger, []string{"/metrics"}))
	r.Use(instrument(m))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(docs.Swagger)
	})

	r.Method(http.MethodGet, "/metrics", m.Handler())

	h := newURLHandler(urlUseCase, validation.New(), opts.BaseURL)

	r.Get("/health", h.health)
	r.Get("/stats", h.getStats)
	r.Post("/shorten", h.shortenURL)

	r.Route("/url/{shortCode}", func(r chi.Router) {
		r.Get("/", h.getURL)
		r.Delete("/", h.deleteURL)
		r.Post("/click", h.recordClick)
		r.Get("/clicks", h.getClicks)
	})

	r.Get("/{shortCode}", h.redirect)

	return r
}
