// Package logger wraps zap for the server and the CLI. Log lines go to a
// writer (stderr by default) so command output on stdout stays clean.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "pkgconsole/internal/core/context"
)

// Logger is a sugared zap logger with request-aware helpers.
type Logger struct {
	*zap.SugaredLogger
}

type loggerKey struct{}

// Config selects level, encoding and sink.
type Config struct {
	Level       string // debug, info, warn, error; anything else means info
	Development bool   // colored console lines instead of JSON
	Output      io.Writer
}

// New builds a logger. A nil Output writes to stderr.
func New(cfg Config) *Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	var enc zapcore.Encoder
	if cfg.Development {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
		opts = append(opts, zap.Development())
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), level)
	return &Logger{zap.New(core, opts...).Sugar()}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default is the JSON info logger used when a component is given none.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(Config{})
	})
	return defaultLogger
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// WithContext tags entries with the trace and request ids of ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	trace := appctx.GetTrace(ctx)
	if trace == nil {
		return l
	}
	return &Logger{l.SugaredLogger.With(
		"trace_id", trace.TraceID,
		"request_id", trace.RequestID,
	)}
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent names the subsystem, e.g. "filtrage.store".
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// WithLogger stores l in ctx for the package-level helpers.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or Default, tagged with
// the trace of ctx.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l.WithContext(ctx)
	}
	return Default().WithContext(ctx)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}
