// Package capture adapts asynchronous platform capture primitives into a
// synchronous, mutually-exclusive, timeout-bounded acquire operation.
//
// A Session is the native primitive: started, it delivers frames through
// callbacks fired from a session-owned goroutine until it is stopped or the
// target disappears. The Acquirer owns the conversion from that callback
// model into a blocking single-frame call.
package capture

import (
	"image"
)

// Callbacks receive session output. Both callbacks fire from goroutines
// owned by the session, never from the caller of Start.
type Callbacks struct {
	// FrameArrived delivers one captured frame.
	FrameArrived func(img image.Image)
	// Closed reports that the session ended on its own, typically because
	// the target window disappeared. err may be nil for a plain close.
	Closed func(err error)
}

// Session is a native capture session. Start arms the session and returns
// synchronously; a start failure because the target does not exist carries
// ErrTargetNotFound. Stop disarms the session, waits for its goroutine to
// drain, and is safe to call more than once.
type Session interface {
	Start(cb Callbacks) error
	Stop() error
}

// AliveCheck reports whether the capture target still exists. Backends
// that cannot observe target loss through their grab primitive use it to
// convert a vanished target into a closed session.
type AliveCheck func() bool

// attempt is the ephemeral result of one acquire call. It is created fresh
// per call and never retained across calls.
type attempt struct {
	img image.Image
	err error
}
