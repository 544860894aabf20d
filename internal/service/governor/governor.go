// Package governor implements the process-wide soft rate counter that delays,
// but never rejects, research requests.
package governor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	obs "github.com/fairyhunter13/ai-legal-research/internal/adapter/observability"
	"github.com/fairyhunter13/ai-legal-research/internal/config"
)

// Admission reports what happened to one admitted request.
type Admission struct {
	Count     int
	Throttled bool
}

// Snapshot is the state exposed by the status endpoint.
type Snapshot struct {
	RequestCount int
	Ceiling      int
	LastReset    time.Time
}

// Governor is a counter with a soft ceiling and two decay timers.
type Governor struct {
	cfg config.GovernorConfig

	// OnFullReset runs after every periodic full reset.
	OnFullReset func()

	mu        sync.Mutex
	count     int
	lastReset time.Time
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration)
}

// New builds a governor. Zero config fields fall back to 100/5/15s/60s/2s.
func New(cfg config.GovernorConfig, onFullReset func()) *Governor {
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = 100
	}
	if cfg.DecayAmount <= 0 {
		cfg.DecayAmount = 5
	}
	if cfg.DecayInterval <= 0 {
		cfg.DecayInterval = 15 * time.Second
	}
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = time.Minute
	}
	if cfg.ThrottleDelay < 0 {
		cfg.ThrottleDelay = 0
	}
	return &Governor{
		cfg:         cfg,
		OnFullReset: onFullReset,
		lastReset:   time.Now(),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Admit counts the request. Above the ceiling it waits ThrottleDelay (or until
// ctx is done) and halves the counter. The request is always admitted.
func (g *Governor) Admit(ctx context.Context) Admission {
	g.mu.Lock()
	g.count++
	n := g.count
	g.mu.Unlock()
	obs.SetGovernorCount(n)

	if n <= g.cfg.Ceiling {
		return Admission{Count: n}
	}

	slog.Warn("rate ceiling exceeded; delaying request",
		slog.Int("request_count", n),
		slog.Int("ceiling", g.cfg.Ceiling),
		slog.Duration("delay", g.cfg.ThrottleDelay))
	obs.GovernorThrottled()
	g.sleep(ctx, g.cfg.ThrottleDelay)

	g.mu.Lock()
	g.count /= 2
	n = g.count
	g.mu.Unlock()
	obs.SetGovernorCount(n)
	return Admission{Count: n, Throttled: true}
}

// Release gives back one admission after a failed request.
func (g *Governor) Release() {
	g.mu.Lock()
	if g.count > 0 {
		g.count--
	}
	n := g.count
	g.mu.Unlock()
	obs.SetGovernorCount(n)
}

// DecayTick lowers the counter by DecayAmount, never below zero.
func (g *Governor) DecayTick() {
	g.mu.Lock()
	g.count -= g.cfg.DecayAmount
	if g.count < 0 {
		g.count = 0
	}
	g.lastReset = g.now()
	n := g.count
	g.mu.Unlock()
	obs.SetGovernorCount(n)
}

// FullResetTick zeroes the counter and runs OnFullReset.
func (g *Governor) FullResetTick() {
	g.Reset()
	if g.OnFullReset != nil {
		g.OnFullReset()
	}
	slog.Debug("rate counter reset")
}

// Reset zeroes the counter.
func (g *Governor) Reset() {
	g.mu.Lock()
	g.count = 0
	g.lastReset = g.now()
	g.mu.Unlock()
	obs.SetGovernorCount(0)
}

// Snapshot returns the current counter state.
func (g *Governor) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{RequestCount: g.count, Ceiling: g.cfg.Ceiling, LastReset: g.lastReset}
}

// Run drives the decay and full-reset timers until ctx is done.
func (g *Governor) Run(ctx context.Context) {
	decay := time.NewTicker(g.cfg.DecayInterval)
	defer decay.Stop()
	reset := time.NewTicker(g.cfg.ResetInterval)
	defer reset.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate governor stopping")
			return
		case <-decay.C:
			g.DecayTick()
		case <-reset.C:
			g.FullResetTick()
		}
	}
}
