package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-legal-research/internal/adapter/ai"
	"github.com/fairyhunter13/ai-legal-research/internal/config"
	"github.com/fairyhunter13/ai-legal-research/internal/domain"
	"github.com/fairyhunter13/ai-legal-research/internal/service/failover"
	"github.com/fairyhunter13/ai-legal-research/internal/service/governor"
	"github.com/fairyhunter13/ai-legal-research/internal/service/keyring"
	"github.com/fairyhunter13/ai-legal-research/internal/usecase"
)

type testEnv struct {
	router   http.Handler
	registry *keyring.Registry
	governor *governor.Governor
	creds    []domain.Credential
}

// newTestEnv wires real services against a fake upstream.
func newTestEnv(t *testing.T, upstream http.HandlerFunc, creds ...domain.Credential) *testEnv {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	cfg := config.Config{GeminiBaseURL: up.URL, DeepSeekBaseURL: up.URL}
	catalog := domain.DefaultModels()
	reg := keyring.NewRegistry(catalog, creds)
	gov := governor.New(config.GovernorConfig{Ceiling: 100, ThrottleDelay: time.Millisecond}, reg.Decay)
	driver := failover.NewDriver(reg, ai.New(cfg), catalog, config.RetryConfig{
		FailoverEnabled:  true,
		DowngradeEnabled: true,
		FallbackModel:    "gemini-2.0-flash",
		AttemptTimeout:   2 * time.Second,
		InitialInterval:  time.Millisecond,
		MaxInterval:      2 * time.Millisecond,
	})
	ref, err := usecase.NewReferenceService()
	require.NoError(t, err)
	srv := NewServer(usecase.NewResearchService(driver, gov, reg, catalog, "gemini-2.0-flash", 5*time.Second), ref)

	r := chi.NewRouter()
	r.Use(Recoverer())
	r.Use(RequestID())
	r.Use(TraceMiddleware)
	r.Use(AccessLog())
	r.Post("/research", srv.ResearchHandler())
	r.Get("/templates/{field}", srv.TemplatesHandler())
	r.Get("/definitions/{term}", srv.DefinitionsHandler())
	r.Get("/status", srv.StatusHandler())
	r.Post("/reset", srv.ResetHandler())
	r.Post("/switch-key", srv.SwitchKeyHandler())
	r.Get("/healthz", srv.HealthHandler())

	return &testEnv{router: SecurityHeaders(r), registry: reg, governor: gov, creds: creds}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func geminiOK(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}}},
		})
	}
}

func geminiKey(name string) domain.Credential {
	return domain.NewCredential(domain.ProviderGemini, name, "AIza-test-secret-"+name)
}

type errorBody struct {
	Error apiError `json:"error"`
}
