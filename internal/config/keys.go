package config

import (
	"fmt"
	"strings"
)

// Provider identifiers used in APIKey.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderDeepSeek = "deepseek"
)

// APIKey is a provider credential as found in the environment.
type APIKey struct {
	Provider string
	Name     string
	Secret   string
}

// APIKeys collects every configured provider credential in registry order:
// GEMINI_API_KEY, GEMINI_API_KEY_1, GEMINI_API_KEY_2, GEMINI_API_KEYS...,
// then DEEPSEEK_API_KEY, DEEPSEEK_API_KEYS.... Blank and duplicate secrets are skipped.
func (c Config) APIKeys() []APIKey {
	seen := make(map[string]struct{})
	out := make([]APIKey, 0, 4)
	add := func(provider, name, secret string) {
		secret = strings.TrimSpace(secret)
		if secret == "" {
			return
		}
		if _, dup := seen[secret]; dup {
			return
		}
		seen[secret] = struct{}{}
		out = append(out, APIKey{Provider: provider, Name: name, Secret: secret})
	}

	add(ProviderGemini, "Gemini", c.GeminiAPIKey)
	add(ProviderGemini, "Gemini 1", c.GeminiAPIKey1)
	add(ProviderGemini, "Gemini 2", c.GeminiAPIKey2)
	for i, k := range c.GeminiAPIKeys {
		add(ProviderGemini, fmt.Sprintf("Gemini %d", i+3), k)
	}

	add(ProviderDeepSeek, "DeepSeek", c.DeepSeekAPIKey)
	for i, k := range c.DeepSeekAPIKeys {
		add(ProviderDeepSeek, fmt.Sprintf("DeepSeek %d", i+1), k)
	}
	return out
}

// BaseURL returns the configured API root for a provider, or "" if unknown.
func (c Config) BaseURL(provider string) string {
	switch provider {
	case ProviderGemini:
		return strings.TrimRight(c.GeminiBaseURL, "/")
	case ProviderDeepSeek:
		return strings.TrimRight(c.DeepSeekBaseURL, "/")
	default:
		return ""
	}
}
