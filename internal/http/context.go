package http

import (
	"context"
	"log/slog"

	"github.com/example/item-validation/internal/logging"
)

type contextKey string

const (
	requestIDContextKey contextKey = "request_id"
	localeContextKey    contextKey = "locale"
)

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithRequestID stores the identifier assigned to the current request.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the identifier assigned by RequestLogger.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}

// ContextWithLocale stores the locale negotiated for the current request.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey, locale)
}

// LocaleFromContext returns the negotiated locale, if any.
func LocaleFromContext(ctx context.Context) (string, bool) {
	locale, ok := ctx.Value(localeContextKey).(string)
	return locale, ok && locale != ""
}
