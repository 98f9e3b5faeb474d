package server

import (
	"context"
	"os/signal"
	"syscall"
)

// WithSignal returns a context canceled on SIGINT or SIGTERM. The returned
// stop function restores default signal handling, so a second signal
// terminates the process immediately.
func WithSignal(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
