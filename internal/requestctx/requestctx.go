package requestctx

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	clientIPKey  ctxKey = "client_ip"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func GetClientIP(ctx context.Context) string {
	if value, ok := ctx.Value(clientIPKey).(string); ok {
		return value
	}
	return ""
}

// Logger returns the default logger tagged with the request id, if any.
func Logger(ctx context.Context) *slog.Logger {
	if id := GetRequestID(ctx); id != "" {
		return slog.Default().With("requestId", id)
	}
	return slog.Default()
}
