// Package logger is the zap-backed structured logger of the ledger.
// A request-scoped logger travels in the context and picks up request and user fields.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "stockledger/internal/core/context"
)

// Logger is a sugared zap logger.
type Logger struct {
	*zap.SugaredLogger
}

// Config selects the level and the encoder.
type Config struct {
	Level string // debug, info, warn, error

	// Development switches to the colored console encoder.
	Development bool
}

// New builds a logger. An unknown level falls back to info.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{z.Sugar()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default is the JSON stdout logger used when none was put on the context.
func Default() *Logger {
	defaultOnce.Do(func() {
		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{"stdout"}
		z, err := zc.Build(zap.AddCallerSkip(1))
		if err != nil {
			z = zap.NewNop()
		}
		defaultLogger = &Logger{z.Sugar()}
	})
	return defaultLogger
}

// WithContext adds the request and user fields found on ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var fields []any
	if meta, ok := appctx.RequestFrom(ctx); ok {
		fields = append(fields, "request_id", meta.RequestID)
		if meta.TraceID != meta.RequestID {
			fields = append(fields, "trace_id", meta.TraceID)
		}
	}
	if user := appctx.GetUser(ctx); user != nil {
		fields = append(fields, "user", user.Username, "role", user.Role)
		if user.AssignedWarehouse != "" {
			fields = append(fields, "user_warehouse", user.AssignedWarehouse)
		}
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(fields...)}
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent tags every line with component=name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

type loggerKey struct{}

// WithLogger puts l on ctx.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger on ctx, or Default, enriched with the ctx fields.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(loggerKey{}).(*Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}

func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
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
