package app

import (
	"context"
	"fmt"

	httpserver "github.com/fairyhunter13/ai-legal-research/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-legal-research/internal/service/keyring"
)

// KeySnapshotter is the minimal view of the key registry needed for readiness.
type KeySnapshotter interface {
	Snapshot() []keyring.KeyStatus
}

// BuildReadinessChecks returns the checks behind /readyz: at least one
// credential of any provider must still be selectable.
func BuildReadinessChecks(keys KeySnapshotter) []httpserver.ReadinessCheck {
	keyCheck := func(_ context.Context) error {
		if keys == nil {
			return fmt.Errorf("key registry not configured")
		}
		snap := keys.Snapshot()
		if len(snap) == 0 {
			return fmt.Errorf("no api keys loaded")
		}
		for _, k := range snap {
			if k.Active {
				return nil
			}
		}
		return fmt.Errorf("all %d api keys disabled", len(snap))
	}
	return []httpserver.ReadinessCheck{{Name: "keys", Check: keyCheck}}
}
