package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ReadinessCheck is one named dependency probe.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ReadyzHandler runs every check and returns 503 when any fails.
func (s *Server) ReadyzHandler(checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ok := true
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				ok = false
				results[c.Name] = err.Error()
				LoggerFrom(r).Warn("readiness check failed", slog.String("check", c.Name), slog.Any("error", err))
				continue
			}
			results[c.Name] = "ok"
		}
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{"ready": ok, "checks": results})
	}
}
