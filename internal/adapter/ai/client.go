package ai

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	obs "github.com/fairyhunter13/ai-legal-research/internal/adapter/observability"
	"github.com/fairyhunter13/ai-legal-research/internal/config"
	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

const maxResponseBytes = 4 << 20

// Client performs single upstream generation calls. It does not retry.
type Client struct {
	baseURLs map[domain.ProviderKind]string
	hc       *http.Client
}

// New builds a client with an otelhttp-instrumented transport. Per-call
// deadlines come from the caller's context.
func New(cfg config.Config) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("Generate %s %s", r.Method, r.URL.Host)
		}),
	)
	return &Client{
		baseURLs: map[domain.ProviderKind]string{
			domain.ProviderGemini:   cfg.BaseURL(config.ProviderGemini),
			domain.ProviderDeepSeek: cfg.BaseURL(config.ProviderDeepSeek),
		},
		hc: &http.Client{Transport: transport},
	}
}

// Dispatch sends payload with cred and returns the generated text and the HTTP
// status (0 when no response was received).
func (c *Client) Dispatch(ctx domain.Context, cred domain.Credential, payload domain.WirePayload) (string, int, error) {
	base, ok := c.baseURLs[payload.Provider]
	if !ok || base == "" {
		return "", 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, payload.Provider)
	}
	if cred.Provider != payload.Provider {
		return "", 0, fmt.Errorf("%w: credential %s is for %s", domain.ErrUnsupportedProvider, cred.Name, cred.Provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+payload.Path, bytes.NewReader(payload.Body))
	if err != nil {
		return "", 0, fmt.Errorf("op=ai.Dispatch: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	switch payload.Provider {
	case domain.ProviderGemini:
		req.Header.Set("x-goog-api-key", cred.Secret)
	case domain.ProviderDeepSeek:
		req.Header.Set("Authorization", "Bearer "+cred.Secret)
	}

	lg := obs.LoggerFromContext(ctx).With(
		slog.String("provider", string(payload.Provider)),
		slog.String("model", payload.Model),
		slog.String("key", cred.Name),
		slog.String("key_end", cred.KeyEnd()),
	)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		obs.ObserveAIRequest(string(payload.Provider), "network_error", time.Since(start))
		lg.Warn("ai provider unreachable", slog.Any("error", err))
		return "", 0, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		obs.ObserveAIRequest(string(payload.Provider), "network_error", time.Since(start))
		return "", resp.StatusCode, fmt.Errorf("%w: read body: %w", domain.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		obs.ObserveAIRequest(string(payload.Provider), "http_"+strings.ToLower(http.StatusText(resp.StatusCode)), time.Since(start))
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		lg.Warn("ai provider non-2xx",
			slog.Int("status", resp.StatusCode),
			slog.String("body", snippet))
		return "", resp.StatusCode, &domain.UpstreamHTTPError{Status: resp.StatusCode, Body: snippet}
	}

	text, err := ExtractText(payload.Provider, body)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrUpstreamEmptyResponse) {
			outcome = "empty"
		}
		obs.ObserveAIRequest(string(payload.Provider), outcome, time.Since(start))
		lg.Warn("ai provider returned no text", slog.Int("status", resp.StatusCode), slog.Any("error", err))
		return "", resp.StatusCode, err
	}

	obs.ObserveAIRequest(string(payload.Provider), "success", time.Since(start))
	lg.Debug("ai provider call succeeded", slog.Duration("duration", time.Since(start)))
	return text, resp.StatusCode, nil
}
