package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestNewWithConfig_ContextAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	requestID := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(ctxKey{}).(string); ok {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
	log := logger.NewWithConfig(logger.Config{Output: &buf}, requestID, nil)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	ctx = logger.WithAttrs(ctx, slog.String("transport", "smtp"))
	ctx = logger.WithAttrs(ctx, slog.Int("attempt", 1))
	log.InfoContext(ctx, "message sent", slog.String("to", "user@example.com"))

	rec := decode(t, &buf)
	assert.Equal(t, "message sent", rec["msg"])
	assert.Equal(t, "smtp", rec["transport"])
	assert.Equal(t, float64(1), rec["attempt"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "user@example.com", rec["to"])
}

type ctxKey struct{}

func TestNewWithConfig_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithConfig(logger.Config{Level: "warn", Output: &buf})

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Equal(t, "shown", decode(t, &buf)["msg"])
}

func TestNewWithConfig_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithConfig(logger.Config{Format: "text", Output: &buf})
	log.Info("hello", slog.String("k", "v"))

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestWithAttrs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, ctx, logger.WithAttrs(ctx))
	assert.Empty(t, logger.AttrsFromContext(ctx))

	parent := logger.WithAttrs(ctx, slog.String("a", "1"))
	child := logger.WithAttrs(parent, slog.String("b", "2"))

	assert.Len(t, logger.AttrsFromContext(parent), 1)
	assert.Len(t, logger.AttrsFromContext(child), 2)
}

func TestNewNope(t *testing.T) {
	t.Parallel()
	log := logger.NewNope()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
