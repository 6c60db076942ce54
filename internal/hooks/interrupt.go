package hooks

import (
	"context"
	"errors"
	"os"
)

// ErrInterrupted marks a panic value as a user-initiated interruption.
var ErrInterrupted = errors.New("interrupted")

// IsInterrupt reports whether a panic value represents cancellation rather
// than a failure. Interrupts are never logged.
func IsInterrupt(v any) bool {
	switch x := v.(type) {
	case os.Signal:
		return x == os.Interrupt
	case error:
		return errors.Is(x, ErrInterrupted) || errors.Is(x, context.Canceled)
	default:
		return false
	}
}
