//go:build !linux

package watch

import (
	"context"
	"errors"
	"log/slog"
)

// ResumeSupported reports whether Resume can observe system resume here.
const ResumeSupported = false

// Resume is not available on this platform.
func Resume(ctx context.Context, logger *slog.Logger, notify func()) error {
	return errors.New("resume notifications are not supported on this platform")
}
