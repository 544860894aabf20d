package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProviderKind identifies the generation-API family a credential and model belong to.
type ProviderKind string

const (
	// ProviderGemini is the primary provider.
	ProviderGemini ProviderKind = "gemini"
	// ProviderDeepSeek is the secondary provider.
	ProviderDeepSeek ProviderKind = "deepseek"
)

// ParseProviderKind validates a provider identifier.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch ProviderKind(s) {
	case ProviderGemini, ProviderDeepSeek:
		return ProviderKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
}

// Credential is a named provider secret. Immutable after load.
type Credential struct {
	ID       string
	Provider ProviderKind
	Name     string
	Secret   string
}

// NewCredential builds a credential with a fresh identifier.
func NewCredential(provider ProviderKind, name, secret string) Credential {
	return Credential{ID: uuid.NewString(), Provider: provider, Name: name, Secret: secret}
}

// KeyEnd returns the masked secret suffix safe to log or expose.
func (c Credential) KeyEnd() string { return MaskSecret(c.Secret) }

// MaskSecret keeps at most the last 8 characters of s and never more than half of it.
func MaskSecret(s string) string {
	n := len(s) / 2
	if n > 8 {
		n = 8
	}
	if n == 0 {
		return "****"
	}
	return "****" + s[len(s)-n:]
}

// OutputType tags the shape of the research output.
type OutputType string

const (
	OutputSimple      OutputType = "simple"
	OutputAcademic    OutputType = "academic"
	OutputSummary     OutputType = "summary"
	OutputPreparation OutputType = "preparation"
	OutputQuiz        OutputType = "quiz"
)

// Valid reports whether t is one of the known output types.
func (t OutputType) Valid() bool {
	switch t {
	case OutputSimple, OutputAcademic, OutputSummary, OutputPreparation, OutputQuiz:
		return true
	}
	return false
}

// GenerationRequest is one inbound research call.
type GenerationRequest struct {
	Prompt   string
	Type     OutputType
	Model    string
	Provider ProviderKind // optional
}

// ResearchMetadata describes how a research answer was produced.
type ResearchMetadata struct {
	Type         OutputType   `json:"type"`
	Timestamp    time.Time    `json:"timestamp"`
	WordCount    int          `json:"wordCount"`
	ModelUsed    string       `json:"model_used"`
	ProviderUsed ProviderKind `json:"provider_used"`
	AttemptsMade int          `json:"attempts_made"`
	PromptTokens int          `json:"prompt_tokens"`
	Downgraded   bool         `json:"downgraded"`
}

// ResearchResult is the successful reply of a research call.
type ResearchResult struct {
	Research string           `json:"research"`
	Metadata ResearchMetadata `json:"metadata"`
}

// Dispatcher (port) performs exactly one upstream call with one credential.
// status is the HTTP status when a response was received, 0 otherwise.
type Dispatcher interface {
	Dispatch(ctx Context, cred Credential, payload WirePayload) (text string, status int, err error)
}

// WirePayload is a provider-specific request ready to be sent.
type WirePayload struct {
	Provider ProviderKind
	Model    string
	// Path is appended to the provider base URL.
	Path string
	Body []byte
}

// Context is an alias to keep domain signatures short.
type Context = context.Context
