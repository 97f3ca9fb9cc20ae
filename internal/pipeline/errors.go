package pipeline

import (
	"fmt"

	"sb3slim/internal/services"
)

var (
	// ErrFatalInput marks input that is not a project archive: not a zip,
	// no project.json, or a project.json that cannot be parsed. Nothing is
	// produced.
	ErrFatalInput = fmt.Errorf("invalid project archive: %w", services.ErrValidation)

	// ErrCancelled marks a run abandoned on request. It is not a failure.
	ErrCancelled = fmt.Errorf("run %w", services.ErrCancelled)
)

// AssetFailure records an asset that fell back to its original bytes.
type AssetFailure struct {
	Path string
	Err  error
}
