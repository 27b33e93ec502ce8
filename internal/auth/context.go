package auth

import (
	"context"
	"net/http"
)

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyUserID is the key for the authenticated user id in the context
	ContextKeyUserID ContextKey = "userID"
	// ContextKeyRequestID is the key for the request correlation id
	ContextKeyRequestID ContextKey = "requestID"
)

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// GetUserID retrieves the authenticated user ID from the request context.
func GetUserID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyUserID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestID retrieves the request id from a context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
