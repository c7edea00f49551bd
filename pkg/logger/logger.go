package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ContextKey is the private key type for values the logger pulls out of a
// request context.
type ContextKey string

const (
	// RequestIDKey carries the id assigned by the request-id middleware.
	RequestIDKey ContextKey = "request_id"
	// UsernameKey carries the authenticated user, when there is one.
	UsernameKey ContextKey = "username"
)

// Config selects the log level and output format.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Init installs the process-wide slog default. Unknown levels fall back
// to info; anything but "json" means text output.
func Init(cfg *Config) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext returns the default logger annotated with whatever request
// identity the context carries.
func WithContext(ctx context.Context) *slog.Logger {
	log := slog.Default()

	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		log = log.With("request_id", id)
	}
	if user, ok := ctx.Value(UsernameKey).(string); ok && user != "" {
		log = log.With("username", user)
	}

	return log
}

// Debug logs at debug level with context annotations.
func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

// Info logs at info level with context annotations.
func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// Warn logs at warn level with context annotations.
func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

// Error logs at error level with context annotations.
func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}
