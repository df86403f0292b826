// Package logging builds the zap loggers used by the server and the CLI and
// carries request-scoped fields through context.
package logging

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
}

// New constructs a zap logger using the provided options.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil || strings.TrimSpace(opts.Level) == "" {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json", "":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Development = opts.Development
	cfg.DisableCaller = !opts.Development && level > zapcore.DebugLevel
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}
	if len(opts.ErrorOutputPaths) > 0 {
		cfg.ErrorOutputPaths = opts.ErrorOutputPaths
	}

	return cfg.Build()
}

// NewNop returns a logger that discards everything.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

const (
	// FieldRequestID is the structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
)

type requestIDKey struct{}

// WithRequestID stores id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		return logger.With(zap.String(FieldRequestID, id))
	}
	return logger
}
