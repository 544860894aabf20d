package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerContext(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), LoggerFromContext(ctx))
	assert.Same(t, slog.Default(), LoggerFromContext(nil)) //nolint:staticcheck

	lg := slog.New(slog.NewTextHandler(nil, nil))
	ctx = ContextWithLogger(ctx, lg)
	assert.Same(t, lg, LoggerFromContext(ctx))
	assert.Equal(t, ctx, ContextWithLogger(ctx, nil))
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Equal(t, ctx, ContextWithRequestID(ctx, ""))

	ctx = ContextWithRequestID(ctx, "01HZX")
	assert.Equal(t, "01HZX", RequestIDFromContext(ctx))
}
