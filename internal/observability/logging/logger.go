package logging

import (
	"context"
	"log/slog"
	"os"

	"engjobs/internal/handler/http/requestid"
)

type contextKey string

const loggerContextKey contextKey = "logger"

func levelFromEnv() slog.Level {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func handlerOptions() *slog.HandlerOptions {
	level := levelFromEnv()
	return &slog.HandlerOptions{
		Level: level,
		// Source locations help when chasing a failed ingest run.
		AddSource: level <= slog.LevelWarn,
	}
}

// NewLogger builds the JSON logger both entrypoints install as default.
// LOG_LEVEL=debug lowers the level; anything else means info.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, handlerOptions()))
}

// NewTextLogger is the human-readable variant for local runs.
func NewTextLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, handlerOptions()))
}

// WithRequestID attaches the request id from ctx, when one is present,
// so every line of a request shares the same correlation key.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// WithFields attaches a set of structured fields at once.
func WithFields(logger *slog.Logger, fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger stores logger in ctx for FromContext to find.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}
