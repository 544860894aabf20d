package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
	"github.com/fairyhunter13/ai-legal-research/internal/usecase"
)

// Server holds the handlers' dependencies.
type Server struct {
	Research  *usecase.ResearchService
	Reference *usecase.ReferenceService
}

// NewServer constructs the handler set.
func NewServer(research *usecase.ResearchService, reference *usecase.ReferenceService) *Server {
	return &Server{Research: research, Reference: reference}
}

// ResearchHandler handles POST /research. An unknown "type" is rejected with
// 400 instead of being formatted as "simple".
func (s *Server) ResearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req researchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument))
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, r, err)
			return
		}

		res, err := s.Research.Research(r.Context(), domain.GenerationRequest{
			Prompt:   req.Prompt,
			Type:     domain.OutputType(req.Type),
			Model:    req.SelectedModel,
			Provider: domain.ProviderKind(req.Provider),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// TemplatesHandler handles GET /templates/{field}.
func (s *Server) TemplatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Reference.Template(urlParam(r, "field")))
	}
}

// DefinitionsHandler handles GET /definitions/{term}.
func (s *Server) DefinitionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := urlParam(r, "term")
		writeJSON(w, http.StatusOK, map[string]string{
			"term":       term,
			"definition": s.Reference.Definition(term),
		})
	}
}

type keyStat struct {
	KeyIndex     int    `json:"keyIndex"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	KeyEnd       string `json:"keyEnd"`
	UsageCount   int    `json:"usageCount"`
	FailureCount int    `json:"failureCount"`
	IsActive     bool   `json:"isActive"`
}

type statusResponse struct {
	RequestCount int       `json:"requestCount"`
	MaxRequests  int       `json:"maxRequests"`
	LastReset    time.Time `json:"lastReset"`
	Uptime       int64     `json:"uptime"`
	APIKeys      struct {
		Total          int       `json:"total"`
		Current        int       `json:"current"`
		ManualOverride *int      `json:"manualOverride"`
		Stats          []keyStat `json:"stats"`
	} `json:"apiKeys"`
}

// StatusHandler handles GET /status. Key indices are 1-based.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := s.Research.Status()
		var out statusResponse
		out.RequestCount = st.RequestCount
		out.MaxRequests = st.MaxRequests
		out.LastReset = st.LastReset.UTC()
		out.Uptime = int64(st.Uptime.Seconds())
		out.APIKeys.Total = st.TotalKeys
		out.APIKeys.Current = st.LastSelected + 1
		if st.ManualOverride >= 0 {
			mo := st.ManualOverride + 1
			out.APIKeys.ManualOverride = &mo
		}
		out.APIKeys.Stats = make([]keyStat, len(st.Keys))
		for i, k := range st.Keys {
			out.APIKeys.Stats[i] = keyStat{
				KeyIndex:     k.Index + 1,
				Name:         k.Name,
				Type:         string(k.Provider),
				KeyEnd:       k.KeyEnd,
				UsageCount:   k.UsageCount,
				FailureCount: k.FailureCount,
				IsActive:     k.Active,
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ResetHandler handles POST /reset.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Research.Reset(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      "تم إعادة تعيين النظام بنجاح",
			"requestCount": 0,
			"keysReset":    true,
		})
	}
}

// SwitchKeyHandler handles POST /switch-key with a 0-based keyIndex.
func (s *Server) SwitchKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
		var req switchKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidKeyIndex))
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidKeyIndex, err))
			return
		}
		res, err := s.Research.SwitchKey(r.Context(), *req.KeyIndex)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":    fmt.Sprintf("تم تبديل المفتاح إلى رقم %d", res.Index+1),
			"currentKey": res.Index + 1,
			"keyEnd":     res.KeyEnd,
		})
	}
}

// HealthHandler reports liveness and the number of loaded credentials.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "keys": s.Research.Status().TotalKeys})
	}
}

func urlParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
