package utils

import (
	"fmt"
	"log/slog"
)

// BestEffort runs a side effect whose failure must not fail the parent
// operation (media cleanup, delegation cancel, library resets). Errors are
// logged and swallowed; callers never branch on the outcome.
func BestEffort(action string, fn func() error) {
	if err := fn(); err != nil {
		slog.Warn(fmt.Sprintf("best-effort %s failed: %v", action, err))
	}
}
