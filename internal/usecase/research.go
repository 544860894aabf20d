// Package usecase contains the research gateway's application services.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-legal-research/internal/adapter/ai"
	"github.com/fairyhunter13/ai-legal-research/internal/adapter/ai/tokencount"
	obs "github.com/fairyhunter13/ai-legal-research/internal/adapter/observability"
	"github.com/fairyhunter13/ai-legal-research/internal/domain"
	"github.com/fairyhunter13/ai-legal-research/internal/service/failover"
	"github.com/fairyhunter13/ai-legal-research/internal/service/governor"
	"github.com/fairyhunter13/ai-legal-research/internal/service/keyring"
	"github.com/fairyhunter13/ai-legal-research/pkg/textx"
)

// Runner drives one generation across credentials.
type Runner interface {
	Run(ctx context.Context, req failover.Request) (failover.Outcome, error)
}

// RateGovernor is the soft admission counter.
type RateGovernor interface {
	Admit(ctx context.Context) governor.Admission
	Release()
	Reset()
	Snapshot() governor.Snapshot
}

// KeyPool is the credential registry as seen by the admin operations.
type KeyPool interface {
	Len() int
	Decay()
	Snapshot() []keyring.KeyStatus
	SetManualOverride(index int) (domain.Credential, error)
	ManualOverride() int
	LastSelected() int
}

// ResearchService answers research requests and exposes the admin operations.
type ResearchService struct {
	runner       Runner
	gov          RateGovernor
	keys         KeyPool
	catalog      domain.ModelCatalog
	defaultModel string
	timeout      time.Duration
	started      time.Time
	now          func() time.Time
	countTokens  func(string) int
}

// NewResearchService wires the service. timeout bounds how long a caller waits.
func NewResearchService(runner Runner, gov RateGovernor, keys KeyPool, catalog domain.ModelCatalog, defaultModel string, timeout time.Duration) *ResearchService {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ResearchService{
		runner:       runner,
		gov:          gov,
		keys:         keys,
		catalog:      catalog,
		defaultModel: defaultModel,
		timeout:      timeout,
		started:      time.Now(),
		now:          time.Now,
		countTokens:  tokencount.Count,
	}
}

func (s *ResearchService) resolveModel(req domain.GenerationRequest) (domain.ModelDescriptor, error) {
	if req.Model == "" {
		if req.Provider == "" {
			return s.catalog.Lookup(s.defaultModel)
		}
		if def, err := s.catalog.Lookup(s.defaultModel); err == nil && def.Provider == req.Provider {
			return def, nil
		}
		if m, ok := s.catalog.DefaultFor(req.Provider); ok {
			return m, nil
		}
		return domain.ModelDescriptor{}, fmt.Errorf("%w: no model for provider %s", domain.ErrUnsupportedModel, req.Provider)
	}
	m, err := s.catalog.Lookup(req.Model)
	if err != nil {
		return domain.ModelDescriptor{}, err
	}
	if req.Provider != "" && m.Provider != req.Provider {
		return domain.ModelDescriptor{}, fmt.Errorf("%w: %s is not served by %s", domain.ErrUnsupportedModel, req.Model, req.Provider)
	}
	return m, nil
}

type runResult struct {
	out          failover.Outcome
	promptTokens int
	err          error
}

// Research generates, formats and annotates one research answer.
func (s *ResearchService) Research(ctx domain.Context, req domain.GenerationRequest) (domain.ResearchResult, error) {
	req.Prompt = textx.SanitizeText(req.Prompt)
	if req.Prompt == "" {
		return domain.ResearchResult{}, fmt.Errorf("%w: prompt required", domain.ErrInvalidArgument)
	}
	if req.Type == "" {
		req.Type = domain.OutputSimple
	}
	if !req.Type.Valid() {
		return domain.ResearchResult{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidArgument, req.Type)
	}
	model, err := s.resolveModel(req)
	if err != nil {
		return domain.ResearchResult{}, err
	}

	lg := obs.LoggerFromContext(ctx)
	adm := s.gov.Admit(ctx)
	lg.Info("research admitted",
		slog.Int("request_count", adm.Count),
		slog.Bool("throttled", adm.Throttled),
		slog.String("type", string(req.Type)),
		slog.String("model", model.Name))

	prompt := EnhancePrompt(req.Prompt, req.Type, model.Name)

	done := make(chan runResult, 1)
	runCtx := context.WithoutCancel(ctx)
	go func() {
		// Counting may load the encoding; keep it under the deadline.
		tokens := s.countTokens(prompt)
		out, err := s.runner.Run(runCtx, failover.Request{Prompt: prompt, Model: model.Name})
		done <- runResult{out: out, promptTokens: tokens, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var res runResult
	select {
	case res = <-done:
	case <-timer.C:
		res.err = fmt.Errorf("%w: no answer within %s", domain.ErrOverallTimeout, s.timeout)
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		s.gov.Release()
		var ex *domain.ExhaustedError
		attempts := 0
		if errors.As(res.err, &ex) {
			attempts = ex.Attempts
		}
		obs.ObserveResearch(string(req.Type), string(domain.Kind(res.err)), attempts, false)
		lg.Error("research failed", slog.Any("error", res.err), slog.String("kind", string(domain.Kind(res.err))))
		return domain.ResearchResult{}, fmt.Errorf("op=usecase.Research: %w", res.err)
	}

	out := res.out
	obs.ObserveResearch(string(req.Type), "success", out.Attempts, out.Downgraded)
	return domain.ResearchResult{
		Research: ai.FormatResponse(out.Text, req.Type),
		Metadata: domain.ResearchMetadata{
			Type:         req.Type,
			Timestamp:    s.now().UTC(),
			WordCount:    textx.WordCount(out.Text),
			ModelUsed:    out.Model,
			ProviderUsed: out.Provider,
			AttemptsMade: out.Attempts,
			PromptTokens: res.promptTokens,
			Downgraded:   out.Downgraded,
		},
	}, nil
}

// StatusReport is the diagnostic view of the governor and the key pool.
type StatusReport struct {
	RequestCount   int
	MaxRequests    int
	LastReset      time.Time
	Uptime         time.Duration
	TotalKeys      int
	LastSelected   int // 0-based
	ManualOverride int // 0-based, -1 when unset
	Keys           []keyring.KeyStatus
}

// Status reports counters without changing them.
func (s *ResearchService) Status() StatusReport {
	g := s.gov.Snapshot()
	return StatusReport{
		RequestCount:   g.RequestCount,
		MaxRequests:    g.Ceiling,
		LastReset:      g.LastReset,
		Uptime:         s.now().Sub(s.started),
		TotalKeys:      s.keys.Len(),
		LastSelected:   s.keys.LastSelected(),
		ManualOverride: s.keys.ManualOverride(),
		Keys:           s.keys.Snapshot(),
	}
}

// Reset zeroes the rate counter and decays the key counters.
func (s *ResearchService) Reset(ctx domain.Context) {
	s.gov.Reset()
	s.keys.Decay()
	obs.LoggerFromContext(ctx).Info("system reset manually")
}

// SwitchResult describes the newly pinned credential.
type SwitchResult struct {
	Index  int // 0-based
	Name   string
	KeyEnd string
}

// SwitchKey records the operator-chosen credential at index (0-based).
func (s *ResearchService) SwitchKey(ctx domain.Context, index int) (SwitchResult, error) {
	cred, err := s.keys.SetManualOverride(index)
	if err != nil {
		return SwitchResult{}, fmt.Errorf("op=usecase.SwitchKey: %w", err)
	}
	obs.LoggerFromContext(ctx).Info("key switched manually",
		slog.Int("key_index", index+1),
		slog.String("key", cred.Name),
		slog.String("key_end", cred.KeyEnd()))
	return SwitchResult{Index: index, Name: cred.Name, KeyEnd: cred.KeyEnd()}, nil
}
