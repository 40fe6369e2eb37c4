package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/nado-dev/nado/logger"
	"github.com/stretchr/testify/require"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	log := logger.FromContext(context.Background())
	require.Equal(t, slog.Default(), log)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := logger.WithLogger(context.Background(), log)
	require.Equal(t, log, logger.FromContext(ctx))
}

func TestWithRunIDStampsEveryRecord(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := logger.WithLogger(context.Background(), log)
	ctx = logger.WithRunID(ctx, "run-123")
	logger.FromContext(ctx).Info("hello")

	require.Contains(t, buf.String(), "run_id=run-123")
}
