package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID  contextKey = "request_id"
	ContextKeySourceName contextKey = "source_name"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithSourceName records the file name a card image came from, for logging.
func WithSourceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeySourceName, name)
}

// SourceNameFromContext extracts the source file name from context
func SourceNameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeySourceName).(string); ok {
		return name
	}
	return ""
}
