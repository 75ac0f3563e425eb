package daemon

import (
	"errors"
	"fmt"
	"time"
)

// RetryPolicy bounds how often a failed cycle is retried.
type RetryPolicy struct {
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// MaxAttempts caps attempts per triggered cycle; 0 means unlimited.
	MaxAttempts int
}

// ShouldRetry reports whether another attempt follows attempt (1-based)
// failing with err.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if err == nil {
		return false
	}
	var ce *contractError
	if errors.As(err, &ce) {
		return false
	}
	return p.MaxAttempts <= 0 || attempt < p.MaxAttempts
}

// contractError wraps a recovered panic. It is never retried.
type contractError struct {
	value any
}

func (e *contractError) Error() string {
	return fmt.Sprintf("reconcile aborted: %v", e.value)
}

func (e *contractError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
