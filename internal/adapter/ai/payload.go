// Package ai builds provider wire payloads, dispatches single upstream
// generation calls, and shapes the returned text per output type.
package ai

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

// SafetyThreshold is the block threshold applied to every harm category.
const SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"

var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// GenerationConfig holds the sampling parameters sent upstream.
type GenerationConfig struct {
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	TopK            int
	CandidateCount  int
	StopSequences   []string
	SafetyThreshold string
}

// DefaultGenerationConfig returns the fixed research parameters with the
// output budget clamped to the model's token limit.
func DefaultGenerationConfig(model domain.ModelDescriptor) GenerationConfig {
	maxTokens := 4000
	if model.MaxTokens > 0 && model.MaxTokens < maxTokens {
		maxTokens = model.MaxTokens
	}
	return GenerationConfig{
		Temperature:     0.7,
		MaxOutputTokens: maxTokens,
		TopP:            0.8,
		TopK:            30,
		CandidateCount:  1,
		StopSequences:   []string{},
		SafetyThreshold: SafetyThreshold,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	TopP            float64  `json:"topP"`
	TopK            int      `json:"topK"`
	CandidateCount  int      `json:"candidateCount"`
	StopSequences   []string `json:"stopSequences"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
	N           int           `json:"n"`
	Stop        []string      `json:"stop,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// BuildPayload constructs the provider-specific request for one prompt.
func BuildPayload(provider domain.ProviderKind, model, prompt string, gc GenerationConfig) (domain.WirePayload, error) {
	var (
		body any
		path string
	)
	switch provider {
	case domain.ProviderGemini:
		threshold := gc.SafetyThreshold
		if threshold == "" {
			threshold = SafetyThreshold
		}
		safety := make([]geminiSafetySetting, len(safetyCategories))
		for i, c := range safetyCategories {
			safety[i] = geminiSafetySetting{Category: c, Threshold: threshold}
		}
		stops := gc.StopSequences
		if stops == nil {
			stops = []string{}
		}
		body = geminiRequest{
			Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
			GenerationConfig: geminiGenerationConfig{
				Temperature:     gc.Temperature,
				MaxOutputTokens: gc.MaxOutputTokens,
				TopP:            gc.TopP,
				TopK:            gc.TopK,
				CandidateCount:  gc.CandidateCount,
				StopSequences:   stops,
			},
			SafetySettings: safety,
		}
		path = "/models/" + url.PathEscape(model) + ":generateContent"
	case domain.ProviderDeepSeek:
		body = chatRequest{
			Model:       model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: gc.Temperature,
			MaxTokens:   gc.MaxOutputTokens,
			TopP:        gc.TopP,
			N:           gc.CandidateCount,
			Stop:        gc.StopSequences,
		}
		path = "/chat/completions"
	default:
		return domain.WirePayload{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, provider)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return domain.WirePayload{}, fmt.Errorf("op=ai.BuildPayload: %w", err)
	}
	return domain.WirePayload{Provider: provider, Model: model, Path: path, Body: b}, nil
}

// ExtractText pulls the generated text out of a provider response body.
func ExtractText(provider domain.ProviderKind, body []byte) (string, error) {
	var text string
	switch provider {
	case domain.ProviderGemini:
		var out geminiResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("%w: decode: %v", domain.ErrUpstreamEmptyResponse, err)
		}
		if len(out.Candidates) > 0 && len(out.Candidates[0].Content.Parts) > 0 {
			text = out.Candidates[0].Content.Parts[0].Text
		}
	case domain.ProviderDeepSeek:
		var out chatResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("%w: decode: %v", domain.ErrUpstreamEmptyResponse, err)
		}
		if len(out.Choices) > 0 {
			text = out.Choices[0].Message.Content
		}
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, provider)
	}
	if text == "" {
		return "", domain.ErrUpstreamEmptyResponse
	}
	return text, nil
}
