// Package keyring holds the provider credentials and their usage/failure
// counters, and picks the credential for each upstream attempt.
package keyring

import (
	"fmt"
	"log/slog"
	"sync"

	obs "github.com/fairyhunter13/ai-legal-research/internal/adapter/observability"
	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

const (
	// CompatibleFailureLimit excludes a credential from selection once reached.
	CompatibleFailureLimit = 5
	// FallbackFailureLimit marks a credential as fully disabled once reached.
	FallbackFailureLimit = 10
)

// KeyStatus is a read-only view of one credential and its counters.
type KeyStatus struct {
	Index        int
	Name         string
	Provider     domain.ProviderKind
	KeyEnd       string
	UsageCount   int
	FailureCount int
	Active       bool
}

type entry struct {
	cred     domain.Credential
	usage    int
	failures int
}

// Registry is the ordered credential set with per-key counters.
type Registry struct {
	catalog domain.ModelCatalog

	mu             sync.Mutex
	entries        []*entry
	byID           map[string]int
	lastSelected   int
	manualOverride int // -1 when unset
}

// NewRegistry builds a registry over creds in the given order.
func NewRegistry(catalog domain.ModelCatalog, creds []domain.Credential) *Registry {
	r := &Registry{
		catalog:        catalog,
		entries:        make([]*entry, 0, len(creds)),
		byID:           make(map[string]int, len(creds)),
		manualOverride: -1,
	}
	for i, c := range creds {
		r.entries = append(r.entries, &entry{cred: c})
		r.byID[c.ID] = i
	}
	return r
}

// Len returns the number of credentials.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Select picks the credential for one attempt against modelName and counts the use.
//
// Only credentials of the model's provider with fewer than CompatibleFailureLimit
// failures are eligible. The least used credential wins, ties going to the lowest
// index. The manual override is not consulted.
func (r *Registry) Select(modelName string) (domain.Credential, error) {
	model, err := r.catalog.Lookup(modelName)
	if err != nil {
		return domain.Credential{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	best := -1
	for i, e := range r.entries {
		if e.cred.Provider != model.Provider || e.failures >= CompatibleFailureLimit {
			continue
		}
		if best < 0 || e.usage < r.entries[best].usage {
			best = i
		}
	}
	if best < 0 {
		for _, e := range r.entries {
			if e.failures < FallbackFailureLimit {
				return domain.Credential{}, fmt.Errorf("%w: provider %s for model %s", domain.ErrNoCompatibleKey, model.Provider, modelName)
			}
		}
		return domain.Credential{}, domain.ErrAllKeysDisabled
	}

	e := r.entries[best]
	e.usage++
	r.lastSelected = best
	obs.KeySelected(e.cred.Name)
	return e.cred, nil
}

// RecordFailure counts a failed attempt against the credential.
func (r *Registry) RecordFailure(cred domain.Credential) {
	r.mu.Lock()
	i, ok := r.byID[cred.ID]
	var failures int
	if ok {
		r.entries[i].failures++
		failures = r.entries[i].failures
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	obs.KeyFailed(cred.Name)
	if failures == CompatibleFailureLimit {
		slog.Warn("credential excluded from selection",
			slog.String("key", cred.Name),
			slog.String("key_end", cred.KeyEnd()),
			slog.Int("failures", failures))
	}
}

// RecordSuccess notes a successful attempt. Counters are left unchanged.
func (r *Registry) RecordSuccess(cred domain.Credential) {
	slog.Debug("credential succeeded", slog.String("key", cred.Name), slog.String("key_end", cred.KeyEnd()))
}

// Decay halves every usage count and forgives one failure per credential.
func (r *Registry) Decay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.usage /= 2
		if e.failures > 0 {
			e.failures--
		}
	}
}

// SetManualOverride records the operator's chosen credential (0-based) for
// diagnostics. Selection keeps rotating by usage.
func (r *Registry) SetManualOverride(index int) (domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.entries) {
		return domain.Credential{}, fmt.Errorf("%w: %d not in [0,%d)", domain.ErrInvalidKeyIndex, index, len(r.entries))
	}
	r.manualOverride = index
	return r.entries[index].cred, nil
}

// ManualOverride returns the pinned index, or -1.
func (r *Registry) ManualOverride() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manualOverride
}

// LastSelected returns the index of the most recently selected credential.
func (r *Registry) LastSelected() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSelected
}

// Snapshot returns the counters of every credential in registry order.
func (r *Registry) Snapshot() []KeyStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]KeyStatus, len(r.entries))
	for i, e := range r.entries {
		out[i] = KeyStatus{
			Index:        i,
			Name:         e.cred.Name,
			Provider:     e.cred.Provider,
			KeyEnd:       e.cred.KeyEnd(),
			UsageCount:   e.usage,
			FailureCount: e.failures,
			Active:       e.failures < CompatibleFailureLimit,
		}
	}
	return out
}
