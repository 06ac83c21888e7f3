package capture

import (
	"context"
	"image"
	"time"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// DefaultAcquireTimeout bounds one acquire when the caller does not supply
// a timeout. Treated as a minimum wait, not an exact deadline.
const DefaultAcquireTimeout = 2500 * time.Millisecond

// Acquirer converts a Session's asynchronous callback delivery into a
// synchronous Acquire call. At most one acquire is in flight at a time; a
// concurrent caller blocks until the current one releases the session.
type Acquirer struct {
	session Session
	log     logger.Logger

	// sem is the exclusivity lock over the whole acquire call, as a
	// channel so a waiting caller can still honor its context.
	sem chan struct{}
}

// NewAcquirer wraps a session.
func NewAcquirer(session Session, log logger.Logger) *Acquirer {
	a := &Acquirer{
		session: session,
		log:     log.Module("capture"),
		sem:     make(chan struct{}, 1),
	}
	a.sem <- struct{}{}
	return a
}

// Acquire arms the session, blocks for up to timeout and returns one frame.
//
// A nil image with a nil error means no frame arrived in time; that is a
// transient, retryable condition, not a failure. A returned error wrapping
// ErrTargetNotFound is fatal for this session, whether the target vanished
// at start time or mid-wait. The session is stopped and the lock released
// on every exit path.
func (a *Acquirer) Acquire(ctx context.Context, timeout time.Duration) (image.Image, error) {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}

	select {
	case <-a.sem:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { a.sem <- struct{}{} }()

	// The stop request may have landed while we waited for the lock.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fresh one-shot result state per call. A callback from a previous,
	// still-draining session holds a reference to its own channel and can
	// never race this attempt.
	done := make(chan attempt, 1)
	cb := Callbacks{
		FrameArrived: func(img image.Image) {
			select {
			case done <- attempt{img: img}:
			default:
			}
		},
		Closed: func(err error) {
			if err == nil {
				err = ErrTargetNotFound
			}
			select {
			case done <- attempt{err: translate(err)}:
			default:
			}
		},
	}

	if err := a.session.Start(cb); err != nil {
		return nil, wrapSessionError(err, "start")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case at := <-done:
		a.stopSession()
		if at.err != nil {
			return nil, wrapSessionError(at.err, "wait")
		}
		return at.img, nil
	case <-timer.C:
		// No frame this time; retryable, not an error.
		a.stopSession()
		return nil, nil
	case <-ctx.Done():
		a.stopSession()
		return nil, ctx.Err()
	}
}

func (a *Acquirer) stopSession() {
	if err := a.session.Stop(); err != nil {
		a.log.Debug("session stop reported error", logger.Error(err))
	}
}
