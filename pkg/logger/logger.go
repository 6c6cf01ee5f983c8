// Package logger builds the zap logger from configuration and carries it
// through context.Context.
package logger

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-domain-repository/pkg/config"
)

const (
	// DevelopmentEnvironment selects verbose, human readable output.
	DevelopmentEnvironment = "development"
	// ProductionEnvironment selects JSON output.
	ProductionEnvironment = "production"
)

var defaultLogger atomic.Pointer[zap.Logger] //nolint: gochecknoglobals

func init() {
	defaultLogger.Store(zap.NewNop())
}

// Setup replaces the default logger with zap's preset for environment.
func Setup(environment string) {
	var l *zap.Logger
	if environment == ProductionEnvironment {
		l, _ = zap.NewProduction()
	} else {
		l, _ = zap.NewDevelopment()
	}
	if l != nil {
		defaultLogger.Store(l)
	}
}

// New builds a logger from cfg. env decides the encoder when cfg.Format
// is empty.
func New(cfg config.LogConfig, env string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}

	var zc zap.Config
	if env == ProductionEnvironment {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	switch cfg.Format {
	case "json", "console":
		zc.Encoding = cfg.Format
	}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return l, nil
}

// SetDefault replaces the default logger. A nil logger is ignored.
func SetDefault(l *zap.Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

type key struct{}

// Get returns the logger stored in ctx, or the default logger.
func Get(ctx context.Context) *zap.Logger {
	if l, _ := ctx.Value(key{}).(*zap.Logger); l != nil {
		return l
	}
	return defaultLogger.Load()
}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, l)
}

// WithFields returns a context whose logger includes fields.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

// Debug logs at debug level with the context logger.
func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Debug(msg, fields...)
}

// Info logs at info level with the context logger.
func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Info(msg, fields...)
}

// Warn logs at warn level with the context logger.
func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Warn(msg, fields...)
}

// Error logs at error level with the context logger.
func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Error(msg, fields...)
}
