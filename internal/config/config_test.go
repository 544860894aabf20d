package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.DefaultModel)
	assert.True(t, cfg.FailoverEnabled)
	assert.Equal(t, 30*time.Second, cfg.AttemptTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, 100, cfg.RateCeiling)
	assert.Equal(t, 5, cfg.RateDecayAmount)
	assert.Equal(t, 15*time.Second, cfg.RateDecayInterval)
	assert.Equal(t, 60*time.Second, cfg.RateResetInterval)
	assert.Equal(t, 2*time.Second, cfg.RateThrottleDelay)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
}

func Test_Load_InvalidDuration(t *testing.T) {
	t.Setenv("ATTEMPT_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=config.Load")
}

func TestAPIKeys_OrderAndDedup(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-primary")
	t.Setenv("GEMINI_API_KEY_1", "g-one")
	t.Setenv("GEMINI_API_KEY_2", "g-primary") // duplicate secret
	t.Setenv("GEMINI_API_KEYS", "g-extra-a, ,g-extra-b")
	t.Setenv("DEEPSEEK_API_KEY", "d-primary")

	cfg, err := Load()
	require.NoError(t, err)

	keys := cfg.APIKeys()
	require.Len(t, keys, 5)
	assert.Equal(t, APIKey{Provider: ProviderGemini, Name: "Gemini", Secret: "g-primary"}, keys[0])
	assert.Equal(t, "Gemini 1", keys[1].Name)
	assert.Equal(t, "g-extra-a", keys[2].Secret)
	assert.Equal(t, "g-extra-b", keys[3].Secret)
	assert.Equal(t, ProviderDeepSeek, keys[4].Provider)
}

func TestAPIKeys_NoneConfigured(t *testing.T) {
	cfg := Config{}
	assert.Empty(t, cfg.APIKeys())
}

func TestBaseURL(t *testing.T) {
	cfg := Config{GeminiBaseURL: "http://g.test/v1beta/", DeepSeekBaseURL: "http://d.test"}
	assert.Equal(t, "http://g.test/v1beta", cfg.BaseURL(ProviderGemini))
	assert.Equal(t, "http://d.test", cfg.BaseURL(ProviderDeepSeek))
	assert.Empty(t, cfg.BaseURL("openai"))
}
