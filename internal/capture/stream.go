package capture

import (
	"image"
	"sync"
	"time"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// frameInterval paces the session's own grab loop. Acquire usually stops
// the session after the first frame, so the pace only matters when a
// consumer lets the session run.
const frameInterval = 50 * time.Millisecond

// streamSession runs a platform grab function on a session-owned goroutine
// and feeds the results through Callbacks, mimicking the free-threaded
// delivery of the native capture APIs. Platform backends supply the grab.
type streamSession struct {
	name string
	grab func() (image.Image, error)
	log  logger.Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func newStreamSession(name string, grab func() (image.Image, error), log logger.Logger) *streamSession {
	return &streamSession{
		name: name,
		grab: grab,
		log:  log.Module("capture").With(logger.String("backend", name)),
	}
}

// Start probes the target once synchronously, so a missing target fails the
// start call itself, then begins streaming frames from its own goroutine.
func (s *streamSession) Start(cb Callbacks) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		select {
		case <-s.done:
			// previous stream ended on its own (target lost)
			s.running = false
		default:
			return errors.Newf("capture session already started").
				Component("capture").
				Category(errors.CategoryState).
				Build()
		}
	}

	first, err := s.grab()
	if err != nil {
		return err
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.stream(first, cb)
	return nil
}

func (s *streamSession) stream(first image.Image, cb Callbacks) {
	defer close(s.done)

	cb.FrameArrived(first)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			img, err := s.grab()
			if err != nil {
				cb.Closed(err)
				return
			}
			cb.FrameArrived(img)
		}
	}
}

// Stop disarms the session and waits for its goroutine to drain.
func (s *streamSession) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}
