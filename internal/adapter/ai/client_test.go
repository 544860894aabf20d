package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fairyhunter13/ai-legal-research/internal/config"
	"github.com/fairyhunter13/ai-legal-research/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.Config{GeminiBaseURL: srv.URL + "/v1beta", DeepSeekBaseURL: srv.URL})
}

func geminiPayload(t *testing.T) domain.WirePayload {
	t.Helper()
	p, err := BuildPayload(domain.ProviderGemini, "gemini-2.0-flash", "سؤال", DefaultGenerationConfig(domain.ModelDescriptor{MaxTokens: 4000}))
	require.NoError(t, err)
	return p
}

func TestDispatch_GeminiSuccess(t *testing.T) {
	cred := domain.NewCredential(domain.ProviderGemini, "Gemini", "g-secret-123456")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-secret-123456", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		b, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(b), "سؤال")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"جواب"}]}}]}`))
	})

	text, status, err := c.Dispatch(context.Background(), cred, geminiPayload(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "جواب", text)
}

func TestDispatch_DeepSeekBearer(t *testing.T) {
	cred := domain.NewCredential(domain.ProviderDeepSeek, "DeepSeek", "d-secret")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer d-secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})
	p, err := BuildPayload(domain.ProviderDeepSeek, "deepseek-chat", "q", DefaultGenerationConfig(domain.ModelDescriptor{}))
	require.NoError(t, err)

	text, _, err := c.Dispatch(context.Background(), cred, p)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestDispatch_Non2xx(t *testing.T) {
	cred := domain.NewCredential(domain.ProviderGemini, "Gemini", "g")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	})

	_, status, err := c.Dispatch(context.Background(), cred, geminiPayload(t))
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	var he *domain.UpstreamHTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, 429, he.Status)
	assert.Contains(t, he.Body, "quota")
}

func TestDispatch_EmptyResponse(t *testing.T) {
	cred := domain.NewCredential(domain.ProviderGemini, "Gemini", "g")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, status, err := c.Dispatch(context.Background(), cred, geminiPayload(t))
	assert.ErrorIs(t, err, domain.ErrUpstreamEmptyResponse)
	assert.Equal(t, http.StatusOK, status)
}

func TestDispatch_TimeoutIsNetworkError(t *testing.T) {
	cred := domain.NewCredential(domain.ProviderGemini, "Gemini", "g")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, status, err := c.Dispatch(ctx, cred, geminiPayload(t))
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, 0, status)
}

func TestDispatch_ProviderMismatch(t *testing.T) {
	c := New(config.Config{GeminiBaseURL: "http://127.0.0.1:1"})
	cred := domain.NewCredential(domain.ProviderDeepSeek, "DeepSeek", "d")
	_, _, err := c.Dispatch(context.Background(), cred, geminiPayload(t))
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}
