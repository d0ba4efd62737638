package recon

import (
	"fmt"

	"github.com/voocel/recon/runtime"
)

// Root re-exports of the runtime's sentinel errors, so callers of the
// top-level Agent API don't need to import the runtime package directly
// to compare errors with errors.Is.
var (
	ErrNotStarted = runtime.ErrNotStarted
	ErrStopped    = runtime.ErrStopped
)

// WrapPlanError wraps a planning-related error with context.
func WrapPlanError(err error, msg string) error {
	return fmt.Errorf("plan error: %s: %w", msg, err)
}

// WrapRuntimeError wraps a runtime-related error with context.
func WrapRuntimeError(err error, msg string) error {
	return fmt.Errorf("runtime error: %s: %w", msg, err)
}
