// Package review holds a filled form open until the person reviewing it is done.
package review

import (
	"context"
	"time"
)

// Reason says why a review wait ended
type Reason string

const (
	// ReasonCancelled means the context ended, usually on SIGINT or SIGTERM.
	ReasonCancelled Reason = "cancelled"
	// ReasonClosed means the browser or tab went away.
	ReasonClosed Reason = "browser closed"
	// ReasonTimeout means the optional review deadline passed.
	ReasonTimeout Reason = "timeout"
)

// Wait blocks until ctx ends, closed is closed, or timeout elapses. A zero
// timeout waits without a deadline. A nil closed channel is never ready.
// The form is never submitted on any path.
func Wait(ctx context.Context, closed <-chan struct{}, timeout time.Duration) Reason {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case <-ctx.Done():
		return ReasonCancelled
	case <-closed:
		return ReasonClosed
	case <-deadline:
		return ReasonTimeout
	}
}
