package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/ai-legal-research/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-legal-research/internal/adapter/observability"
	"github.com/fairyhunter13/ai-legal-research/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server, ready ...httpserver.ReadinessCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Research is bounded by the overall request timeout inside the use case.
	r.Post("/research", srv.ResearchHandler())

	r.Group(func(wr chi.Router) {
		wr.Use(httpserver.TimeoutMiddleware(10 * time.Second))
		wr.Get("/templates/{field}", srv.TemplatesHandler())
		wr.Get("/definitions/{term}", srv.DefinitionsHandler())
		wr.Get("/status", srv.StatusHandler())
	})

	// Operator endpoints mutate shared counters.
	r.Group(func(wr chi.Router) {
		limit := cfg.AdminRateLimitPerMin
		if limit <= 0 {
			limit = 30
		}
		wr.Use(httprate.LimitByIP(limit, time.Minute))
		wr.Use(httpserver.TimeoutMiddleware(10 * time.Second))
		wr.Post("/reset", srv.ResetHandler())
		wr.Post("/switch-key", srv.SwitchKeyHandler())
	})

	r.Get("/healthz", srv.HealthHandler())
	r.Get("/readyz", srv.ReadyzHandler(ready...))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return httpserver.SecurityHeaders(r)
}
