package services

import "context"

type contextKey string

const (
	archiveKey   contextKey = "archive"
	incrementKey contextKey = "increment"
	policyKey    contextKey = "policy"
	requestIDKey contextKey = "request_id"
)

// WithArchive annotates context with the archive name being processed.
func WithArchive(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, archiveKey, name)
}

// ArchiveFromContext returns the archive name if present.
func ArchiveFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(archiveKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithIncrement annotates context with the increment tag (YYMMDD date stamp).
func WithIncrement(ctx context.Context, tag string) context.Context {
	if tag == "" {
		return ctx
	}
	return context.WithValue(ctx, incrementKey, tag)
}

// IncrementFromContext returns the increment tag if present.
func IncrementFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(incrementKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPolicy annotates context with the run policy name (daily/weekly/monthly).
func WithPolicy(ctx context.Context, policy string) context.Context {
	if policy == "" {
		return ctx
	}
	return context.WithValue(ctx, policyKey, policy)
}

// PolicyFromContext returns the policy name if present.
func PolicyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(policyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
