package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	assetPathKey contextKey = "asset"
)

// WithRunID annotates context with the repackaging run identifier.
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

// WithAssetPath annotates context with the archive path of the asset being processed.
func WithAssetPath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, assetPathKey, path)
}

// AssetPathFromContext returns the asset path if present.
func AssetPathFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(assetPathKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
