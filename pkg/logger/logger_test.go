package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "pkgconsole/internal/core/context"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestWithContext_AddsTraceFields(t *testing.T) {
	log, logs := newObserved()
	ctx := appctx.WithTrace(context.Background(), &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})

	log.WithContext(ctx).Infow("hello", "view", "pkgs")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "pkgs", fields["view"])
}

func TestWithContext_NoTrace(t *testing.T) {
	log, logs := newObserved()

	log.WithContext(context.Background()).Infow("hello")

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
}

func TestFromContext(t *testing.T) {
	log, logs := newObserved()
	ctx := WithLogger(context.Background(), log.WithComponent("filtrage"))

	Warn(ctx, "persist filters failed", "view", "pkgs")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "filtrage", entry.ContextMap()["component"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := New(Config{Level: "loud", Output: io.Discard})
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestNew_WritesJSONToOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.WithComponent("filtrage").Infow("dropped")
	log.WithComponent("filtrage").Warnw("bad filters", "view", "pkgs")
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "bad filters", entry["msg"])
	assert.Equal(t, "filtrage", entry["component"])
	assert.Equal(t, "pkgs", entry["view"])
}
