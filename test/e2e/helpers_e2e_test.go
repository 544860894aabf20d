//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// getenv returns the value of the environment variable k or def if empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

var (
	baseURL = getenv("E2E_BASE_URL", "http://localhost:3000")
	timeout = 10 * time.Second
)

// requireApp skips the test when the gateway is not reachable.
func requireApp(t *testing.T) *http.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		t.Skip("App not available; skipping E2E")
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("App not healthy (%d); skipping E2E", resp.StatusCode)
	}
	return client
}

func postJSON(t *testing.T, client *http.Client, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
