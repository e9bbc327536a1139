package services

import "context"

type contextKey string

const (
	datasetIDKey contextKey = "dataset_id"
	requestIDKey contextKey = "request_id"
)

// WithDatasetID annotates context with the archive dataset identifier.
func WithDatasetID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, datasetIDKey, id)
}

// DatasetIDFromContext returns the dataset identifier if present.
func DatasetIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(datasetIDKey).(string); ok && v != "" {
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
