package ai

import (
	"encoding/json"
	"testing"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGenerationConfig(t *testing.T) {
	gc := DefaultGenerationConfig(domain.ModelDescriptor{MaxTokens: 4000})
	assert.Equal(t, 0.7, gc.Temperature)
	assert.Equal(t, 4000, gc.MaxOutputTokens)
	assert.Equal(t, 0.8, gc.TopP)
	assert.Equal(t, 30, gc.TopK)
	assert.Equal(t, 1, gc.CandidateCount)
	assert.Equal(t, SafetyThreshold, gc.SafetyThreshold)

	small := DefaultGenerationConfig(domain.ModelDescriptor{MaxTokens: 1024})
	assert.Equal(t, 1024, small.MaxOutputTokens)
}

func TestBuildPayload_Gemini(t *testing.T) {
	gc := DefaultGenerationConfig(domain.ModelDescriptor{MaxTokens: 4000})
	p, err := BuildPayload(domain.ProviderGemini, "gemini-2.0-flash", "ما هو العقد؟", gc)
	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", p.Path)
	assert.Equal(t, domain.ProviderGemini, p.Provider)

	var body map[string]any
	require.NoError(t, json.Unmarshal(p.Body, &body))
	contents := body["contents"].([]any)
	part := contents[0].(map[string]any)["parts"].([]any)[0].(map[string]any)
	assert.Equal(t, "ما هو العقد؟", part["text"])

	cfg := body["generationConfig"].(map[string]any)
	assert.EqualValues(t, 4000, cfg["maxOutputTokens"])
	assert.EqualValues(t, 30, cfg["topK"])
	assert.Equal(t, []any{}, cfg["stopSequences"])

	safety := body["safetySettings"].([]any)
	require.Len(t, safety, 4)
	for _, s := range safety {
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s.(map[string]any)["threshold"])
	}
}

func TestBuildPayload_DeepSeek(t *testing.T) {
	gc := DefaultGenerationConfig(domain.ModelDescriptor{MaxTokens: 4000})
	p, err := BuildPayload(domain.ProviderDeepSeek, "deepseek-chat", "prompt", gc)
	require.NoError(t, err)
	assert.Equal(t, "/chat/completions", p.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(p.Body, &body))
	assert.Equal(t, "deepseek-chat", body["model"])
	assert.Equal(t, false, body["stream"])
	assert.EqualValues(t, 4000, body["max_tokens"])
	msg := body["messages"].([]any)[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "prompt", msg["content"])
	assert.NotContains(t, body, "stop")
}

func TestBuildPayload_UnknownProvider(t *testing.T) {
	_, err := BuildPayload(domain.ProviderKind("openai"), "gpt-4", "x", GenerationConfig{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText(domain.ProviderGemini, []byte(`{"candidates":[{"content":{"parts":[{"text":"جواب"}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "جواب", text)

	text, err = ExtractText(domain.ProviderDeepSeek, []byte(`{"choices":[{"message":{"role":"assistant","content":"answer"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "answer", text)

	_, err = ExtractText(domain.ProviderGemini, []byte(`{"candidates":[]}`))
	assert.ErrorIs(t, err, domain.ErrUpstreamEmptyResponse)

	_, err = ExtractText(domain.ProviderDeepSeek, []byte(`not json`))
	assert.ErrorIs(t, err, domain.ErrUpstreamEmptyResponse)

	_, err = ExtractText(domain.ProviderKind("x"), []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}
