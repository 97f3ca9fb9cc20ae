package services_test

import (
	"context"
	"testing"

	"sb3slim/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithAssetPath(ctx, "abc.png")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if path, ok := services.AssetPathFromContext(ctx); !ok || path != "abc.png" {
		t.Fatalf("unexpected asset path: %v %v", path, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithAssetPath(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
	if _, ok := services.AssetPathFromContext(ctx); ok {
		t.Fatal("expected no asset path")
	}
}
