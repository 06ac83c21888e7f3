// Package workers provides a lifecycle framework for named background
// workers: each registered worker runs on its own goroutine under a
// Controller that starts it, requests cooperative stop, waits with a bounded
// grace period and abandons misbehaving workers at final cleanup.
//
// Lifecycle signals (started, finished, failed) travel over a single
// controller-owned channel; they are the only sanctioned way information
// crosses from a worker goroutine back to the controlling goroutine.
package workers

import (
	"context"

	"github.com/google/uuid"
)

// Worker is a named unit of background work with a cooperative-stop
// contract. Run is invoked exactly once per start on a dedicated goroutine;
// it must watch ctx and return promptly once it is cancelled. Returning a
// non-nil error produces a failed lifecycle event.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// StopNotifier is an optional hook invoked when stop is requested for a
// worker. It runs on the goroutine calling StopWorker, must not block, and
// is the place to nudge blocking native calls awake (disarm a timer, ask a
// capture session to stop) faster than their own timeouts would.
type StopNotifier interface {
	OnStopRequested()
}

// EventKind classifies worker lifecycle events
type EventKind int

const (
	// EventStarted is emitted before the worker body executes
	EventStarted EventKind = iota
	// EventFinished is emitted after the worker body returns, on every path
	EventFinished
	// EventFailed is emitted when the body returns an error or panics
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a worker lifecycle notification
type Event struct {
	Worker string
	Kind   EventKind
	Err    error // set for EventFailed
}

// Base supplies the Name part of the Worker contract. Embed it and
// implement Run.
type Base struct {
	name string
}

// NewBase creates a Base with the given name, generating one when empty.
func NewBase(name string) Base {
	if name == "" {
		name = "worker-" + uuid.NewString()[:8]
	}
	return Base{name: name}
}

// Name returns the worker's name
func (b *Base) Name() string {
	return b.name
}
