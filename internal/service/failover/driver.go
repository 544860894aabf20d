// Package failover runs one research generation across credentials and,
// when the requested model has no usable credential, once more on the
// fallback model. The attempt budget is shared by both phases.
package failover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fairyhunter13/ai-legal-research/internal/adapter/ai"
	obs "github.com/fairyhunter13/ai-legal-research/internal/adapter/observability"
	"github.com/fairyhunter13/ai-legal-research/internal/config"
	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

// Selector is the credential pool the driver draws from.
type Selector interface {
	Select(modelName string) (domain.Credential, error)
	RecordFailure(cred domain.Credential)
	RecordSuccess(cred domain.Credential)
	Len() int
}

// Request is one generation to drive.
type Request struct {
	Prompt string
	Model  string
}

// Outcome is a successful generation.
type Outcome struct {
	Text           string
	Provider       domain.ProviderKind
	Model          string
	CredentialName string
	Attempts       int
	Downgraded     bool
}

// Driver is the bounded retry/failover loop.
type Driver struct {
	keys       Selector
	dispatcher domain.Dispatcher
	catalog    domain.ModelCatalog
	cfg        config.RetryConfig

	pause func(ctx context.Context, d time.Duration) error
}

// NewDriver wires a driver.
func NewDriver(keys Selector, dispatcher domain.Dispatcher, catalog domain.ModelCatalog, cfg config.RetryConfig) *Driver {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	return &Driver{keys: keys, dispatcher: dispatcher, catalog: catalog, cfg: cfg, pause: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MaxAttempts is the shared attempt budget for one Run.
func (d *Driver) MaxAttempts() int {
	if !d.cfg.FailoverEnabled {
		return 1
	}
	if n := 2 * d.keys.Len(); n > 0 {
		return n
	}
	return 1
}

func (d *Driver) phases(model string) []string {
	out := []string{model}
	if d.cfg.FailoverEnabled && d.cfg.DowngradeEnabled && d.cfg.FallbackModel != "" && d.cfg.FallbackModel != model {
		out = append(out, d.cfg.FallbackModel)
	}
	return out
}

func (d *Driver) newBackOff() backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	if d.cfg.InitialInterval > 0 {
		expo.InitialInterval = d.cfg.InitialInterval
	}
	if d.cfg.MaxInterval > 0 {
		expo.MaxInterval = d.cfg.MaxInterval
	}
	expo.Multiplier = 2
	expo.RandomizationFactor = 0.1
	expo.MaxElapsedTime = 0
	expo.Reset()
	return expo
}

// Run drives req to a result. Failures come back as *domain.ExhaustedError,
// or as the selection/build error when no attempt could be made.
func (d *Driver) Run(ctx context.Context, req Request) (Outcome, error) {
	tracer := otel.Tracer("failover.driver")
	ctx, span := tracer.Start(ctx, "Driver.Run")
	defer span.End()

	lg := obs.LoggerFromContext(ctx)
	budget := d.MaxAttempts()
	phases := d.phases(req.Model)
	bo := d.newBackOff()
	span.SetAttributes(
		attribute.String("model", req.Model),
		attribute.Int("max_attempts", budget),
	)

	var (
		attempts   int
		lastStatus int
		lastErr    error
	)
	exhausted := func(err error) error {
		e := &domain.ExhaustedError{Attempts: attempts, LastStatus: lastStatus, Err: err}
		span.RecordError(e)
		span.SetStatus(codes.Error, "exhausted")
		lg.Error("research generation exhausted",
			slog.Int("attempts", attempts),
			slog.Int("last_status", lastStatus),
			slog.Any("error", err))
		return e
	}

phaseLoop:
	for pi, model := range phases {
		downgraded := pi > 0
		if downgraded {
			lg.Warn("no compatible key for model; downgrading",
				slog.String("from", req.Model),
				slog.String("to", model))
		}
		desc, err := d.catalog.Lookup(model)
		if err != nil {
			return Outcome{}, fmt.Errorf("op=failover.Run: %w", err)
		}
		gc := ai.DefaultGenerationConfig(desc)

		for attempts < budget {
			cred, err := d.keys.Select(model)
			if err != nil {
				if errors.Is(err, domain.ErrNoCompatibleKey) && pi+1 < len(phases) {
					continue phaseLoop
				}
				if attempts > 0 {
					return Outcome{}, exhausted(err)
				}
				span.RecordError(err)
				return Outcome{}, fmt.Errorf("op=failover.Run: %w", err)
			}

			payload, err := ai.BuildPayload(desc.Provider, model, req.Prompt, gc)
			if err != nil {
				return Outcome{}, fmt.Errorf("op=failover.Run: %w", err)
			}

			attempts++
			text, status, err := d.attempt(ctx, cred, payload, attempts)
			if err == nil {
				d.keys.RecordSuccess(cred)
				span.SetAttributes(attribute.Int("attempts", attempts), attribute.Bool("downgraded", downgraded))
				return Outcome{
					Text:           text,
					Provider:       desc.Provider,
					Model:          model,
					CredentialName: cred.Name,
					Attempts:       attempts,
					Downgraded:     downgraded,
				}, nil
			}

			lastErr = err
			var he *domain.UpstreamHTTPError
			if errors.As(err, &he) {
				lastStatus = he.Status
			}
			if errors.Is(err, domain.ErrUnsupportedProvider) {
				return Outcome{}, fmt.Errorf("op=failover.Run: %w", err)
			}
			if !errors.Is(err, domain.ErrUpstreamEmptyResponse) {
				d.keys.RecordFailure(cred)
			}
			lg.Warn("attempt failed",
				slog.Int("attempt", attempts),
				slog.Int("max_attempts", budget),
				slog.String("key", cred.Name),
				slog.String("key_end", cred.KeyEnd()),
				slog.Int("status", status),
				slog.Any("error", err))

			if attempts < budget {
				if perr := d.pause(ctx, bo.NextBackOff()); perr != nil {
					return Outcome{}, exhausted(fmt.Errorf("%w: %w", lastErr, perr))
				}
			}
		}
		break
	}
	return Outcome{}, exhausted(lastErr)
}

func (d *Driver) attempt(ctx context.Context, cred domain.Credential, payload domain.WirePayload, n int) (string, int, error) {
	ctx, span := otel.Tracer("failover.driver").Start(ctx, "Driver.attempt")
	defer span.End()
	span.SetAttributes(
		attribute.Int("attempt", n),
		attribute.String("provider", string(payload.Provider)),
		attribute.String("model", payload.Model),
		attribute.String("key", cred.Name),
	)

	actx, cancel := context.WithTimeout(ctx, d.cfg.AttemptTimeout)
	defer cancel()
	text, status, err := d.dispatcher.Dispatch(actx, cred, payload)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return text, status, err
}
