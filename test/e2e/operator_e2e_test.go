//go:build e2e

package e2e_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusBody struct {
	RequestCount int `json:"requestCount"`
	MaxRequests  int `json:"maxRequests"`
	APIKeys      struct {
		Total          int  `json:"total"`
		ManualOverride *int `json:"manualOverride"`
		Stats          []struct {
			KeyIndex     int    `json:"keyIndex"`
			KeyEnd       string `json:"keyEnd"`
			FailureCount int    `json:"failureCount"`
		} `json:"stats"`
	} `json:"apiKeys"`
}

func TestE2E_ResetThenStatus(t *testing.T) {
	client := requireApp(t)

	resp := postJSON(t, client, "/reset", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := client.Get(baseURL + "/status")
	require.NoError(t, err)
	var st statusBody
	decodeBody(t, resp, &st)
	assert.Equal(t, 0, st.RequestCount)
	assert.Positive(t, st.APIKeys.Total)
	for _, k := range st.APIKeys.Stats {
		assert.GreaterOrEqual(t, k.FailureCount, 0)
		assert.Regexp(t, `^\*\*\*\*`, k.KeyEnd)
	}
}

func TestE2E_SwitchKey(t *testing.T) {
	client := requireApp(t)

	resp, err := client.Get(baseURL + "/status")
	require.NoError(t, err)
	var st statusBody
	decodeBody(t, resp, &st)

	resp = postJSON(t, client, "/switch-key", map[string]any{"keyIndex": st.APIKeys.Total})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "index one past the last key")
	resp.Body.Close()

	resp = postJSON(t, client, "/switch-key", map[string]any{"keyIndex": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Get(baseURL + "/status")
	require.NoError(t, err)
	decodeBody(t, resp, &st)
	require.NotNil(t, st.APIKeys.ManualOverride)
	assert.Equal(t, 1, *st.APIKeys.ManualOverride)
}

func TestE2E_ReferenceTables(t *testing.T) {
	client := requireApp(t)

	resp, err := client.Get(baseURL + "/templates/" + url.PathEscape("قانون جنائي"))
	require.NoError(t, err)
	var tpl struct {
		Structure []string `json:"structure"`
		Keywords  []string `json:"keywords"`
	}
	decodeBody(t, resp, &tpl)
	assert.NotEmpty(t, tpl.Structure)
	assert.Contains(t, tpl.Keywords, "العقوبة")

	resp, err = client.Get(baseURL + "/definitions/" + url.PathEscape("العقد"))
	require.NoError(t, err)
	var def map[string]string
	decodeBody(t, resp, &def)
	assert.Equal(t, "العقد", def["term"])
	assert.NotEmpty(t, def["definition"])
}

func TestE2E_SecurityHeaders(t *testing.T) {
	client := requireApp(t)
	for _, path := range []string{"/healthz", "/status", "/metrics", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			resp, err := client.Get(baseURL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
			assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		})
	}
}
