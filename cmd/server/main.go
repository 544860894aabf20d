// Command server starts the legal research HTTP gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/ai-legal-research/internal/adapter/ai"
	httpserver "github.com/fairyhunter13/ai-legal-research/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-legal-research/internal/adapter/observability"
	"github.com/fairyhunter13/ai-legal-research/internal/app"
	"github.com/fairyhunter13/ai-legal-research/internal/config"
	"github.com/fairyhunter13/ai-legal-research/internal/domain"
	"github.com/fairyhunter13/ai-legal-research/internal/service/failover"
	"github.com/fairyhunter13/ai-legal-research/internal/service/governor"
	"github.com/fairyhunter13/ai-legal-research/internal/service/keyring"
	"github.com/fairyhunter13/ai-legal-research/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	creds := loadCredentials(cfg)
	if len(creds) == 0 {
		slog.Error("no api keys configured; set GEMINI_API_KEY or DEEPSEEK_API_KEY")
		os.Exit(1)
	}

	catalog := domain.DefaultModels()
	if _, err := catalog.Lookup(cfg.DefaultModel); err != nil {
		slog.Error("invalid default model", slog.String("model", cfg.DefaultModel), slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := keyring.NewRegistry(catalog, creds)
	gov := governor.New(cfg.GetGovernorConfig(), registry.Decay)
	go gov.Run(ctx)

	driver := failover.NewDriver(registry, ai.New(cfg), catalog, cfg.GetRetryConfig())
	slog.Info("failover driver ready",
		slog.Int("keys", registry.Len()),
		slog.Int("max_attempts", driver.MaxAttempts()),
		slog.Bool("downgrade", cfg.ModelDowngradeEnabled))

	reference, err := usecase.NewReferenceService()
	if err != nil {
		slog.Error("reference tables failed to load", slog.Any("error", err))
		os.Exit(1)
	}
	research := usecase.NewResearchService(driver, gov, registry, catalog, cfg.DefaultModel, cfg.RequestTimeout)

	srv := httpserver.NewServer(research, reference)
	handler := app.BuildRouter(cfg, srv, app.BuildReadinessChecks(registry)...)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

func loadCredentials(cfg config.Config) []domain.Credential {
	keys := cfg.APIKeys()
	creds := make([]domain.Credential, 0, len(keys))
	for _, k := range keys {
		provider, err := domain.ParseProviderKind(k.Provider)
		if err != nil {
			slog.Warn("skipping key", slog.String("key", k.Name), slog.Any("error", err))
			continue
		}
		cred := domain.NewCredential(provider, k.Name, k.Secret)
		slog.Info("api key loaded", slog.String("key", cred.Name), slog.String("provider", string(provider)), slog.String("key_end", cred.KeyEnd()))
		creds = append(creds, cred)
	}
	return creds
}
