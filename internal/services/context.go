package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	fileKey      contextKey = "file"
	directionKey contextKey = "direction"
)

// WithRunID annotates context with the batch or watch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFile annotates context with the input file being converted.
func WithFile(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, fileKey, path)
}

// FileFromContext returns the input file if present.
func FileFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(fileKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDirection annotates context with the conversion direction.
func WithDirection(ctx context.Context, direction string) context.Context {
	if direction == "" {
		return ctx
	}
	return context.WithValue(ctx, directionKey, direction)
}

// DirectionFromContext returns the conversion direction if present.
func DirectionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(directionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
