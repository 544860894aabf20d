package domain

import (
	"fmt"
	"sort"
)

// CostTier is a coarse price class of a model.
type CostTier string

const (
	CostFree CostTier = "free"
	CostPaid CostTier = "paid"
)

// ModelDescriptor is static metadata of a callable generation model.
type ModelDescriptor struct {
	Name        string
	DisplayName string
	Provider    ProviderKind
	MaxTokens   int
	CostTier    CostTier
}

// ModelCatalog is the static model registry keyed by model name.
type ModelCatalog map[string]ModelDescriptor

// DefaultModels returns the built-in catalog.
func DefaultModels() ModelCatalog {
	return NewModelCatalog(
		ModelDescriptor{Name: "gemini-2.0-flash", DisplayName: "Gemini 2.0 Flash", Provider: ProviderGemini, MaxTokens: 4000, CostTier: CostFree},
		ModelDescriptor{Name: "gemini-1.5-flash", DisplayName: "Gemini 1.5 Flash", Provider: ProviderGemini, MaxTokens: 4000, CostTier: CostFree},
		ModelDescriptor{Name: "deepseek-chat", DisplayName: "DeepSeek Chat", Provider: ProviderDeepSeek, MaxTokens: 4000, CostTier: CostPaid},
		ModelDescriptor{Name: "deepseek-reasoner", DisplayName: "DeepSeek Reasoner", Provider: ProviderDeepSeek, MaxTokens: 4000, CostTier: CostPaid},
	)
}

// NewModelCatalog indexes descriptors by name.
func NewModelCatalog(models ...ModelDescriptor) ModelCatalog {
	c := make(ModelCatalog, len(models))
	for _, m := range models {
		c[m.Name] = m
	}
	return c
}

// Lookup returns the descriptor for name or ErrUnsupportedModel.
func (c ModelCatalog) Lookup(name string) (ModelDescriptor, error) {
	m, ok := c[name]
	if !ok {
		return ModelDescriptor{}, fmt.Errorf("%w: %s", ErrUnsupportedModel, name)
	}
	return m, nil
}

// DefaultFor returns the first model (by name) served by provider.
func (c ModelCatalog) DefaultFor(provider ProviderKind) (ModelDescriptor, bool) {
	names := make([]string, 0, len(c))
	for name, m := range c {
		if m.Provider == provider {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ModelDescriptor{}, false
	}
	sort.Strings(names)
	return c[names[0]], true
}
