// Package buddy coordinates the search and capture workers. It owns the
// Searching / Capturing state machine: search until the game is running,
// capture frames until the game goes away, then search again.
package buddy

import (
	"context"
	"image"
	"sync/atomic"
	"time"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/capture"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/metrics"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/ocr"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/overlay"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/workers"
)

// State is the orchestrator's current mode.
type State int32

const (
	// StateSearching means no game process has been sighted; the search
	// worker is polling for it.
	StateSearching State = iota
	// StateCapturing means the capture worker is pulling frames from the
	// game window.
	StateCapturing
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateCapturing:
		return "capturing"
	default:
		return "unknown"
	}
}

var allStates = []string{StateSearching.String(), StateCapturing.String()}

// Each phase pairs a TimerWorker with a consumer worker: the timer emits
// ticks, the consumer does the probing or capturing on each tick. Both run
// under the controller so stop and cleanup semantics apply to the timers
// too.
const (
	searchTimerName   = "search-timer"
	searchWorkerName  = "target-search"
	captureTimerName  = "capture-timer"
	captureWorkerName = "frame-capture"
)

const (
	statusSearching = "Waiting for The Bazaar to start…"
	statusWatching  = "Bazaar process found, watching…"
)

// TargetProbe reports whether the game is up with a visible window.
type TargetProbe interface {
	Present() bool
}

// FrameAcquirer produces at most one frame per call, or (nil, nil) when no
// frame arrived in time.
type FrameAcquirer interface {
	Acquire(ctx context.Context, timeout time.Duration) (image.Image, error)
}

// TextExtractor turns a frame into confident words.
type TextExtractor interface {
	Extract(frame image.Image) (*ocr.Result, error)
}

// Matcher resolves screen text to a display message.
type Matcher interface {
	Lookup(text string) (string, bool)
}

// Buddy is the orchestrator. Construct with New, drive with BeginSearch,
// tear down with Shutdown.
type Buddy struct {
	settings   *conf.Settings
	log        logger.Logger
	probe      TargetProbe
	acquirer   FrameAcquirer
	extractor  TextExtractor
	matcher    Matcher
	display    overlay.Displayer
	metrics    *metrics.Metrics // nil when metrics are disabled
	controller *workers.Controller

	state  atomic.Int32
	found  atomic.Bool // set by the search worker just before it finishes
	closed atomic.Bool
}

// New wires the orchestrator together. The metrics argument may be nil.
func New(
	settings *conf.Settings,
	probe TargetProbe,
	acquirer FrameAcquirer,
	extractor TextExtractor,
	matcher Matcher,
	display overlay.Displayer,
	m *metrics.Metrics,
	log logger.Logger,
) *Buddy {
	b := &Buddy{
		settings:  settings,
		log:       log.Module("buddy"),
		probe:     probe,
		acquirer:  acquirer,
		extractor: extractor,
		matcher:   matcher,
		display:   display,
		metrics:   m,
	}
	opts := []workers.Option{
		workers.WithStopGrace(settings.Target.StopGrace),
		workers.WithEventObserver(b.onEvent),
	}
	if m != nil {
		opts = append(opts, workers.WithStopTimeoutObserver(func(worker string) {
			m.StopTimeouts.WithLabelValues(worker).Inc()
		}))
	}
	b.controller = workers.NewController(log, opts...)
	b.setState(StateSearching)
	return b
}

// State returns the current orchestrator state.
func (b *Buddy) State() State {
	return State(b.state.Load())
}

func (b *Buddy) setState(s State) {
	b.state.Store(int32(s))
	if b.metrics != nil {
		b.metrics.SetState(s.String(), allStates...)
	}
}

// BeginSearch starts the search timer and its consumer. Call once after
// New.
func (b *Buddy) BeginSearch() error {
	return b.beginSearching()
}

// Shutdown stops all workers and releases the controller. Safe to call
// once; further lifecycle events are ignored.
func (b *Buddy) Shutdown() {
	b.closed.Store(true)
	b.controller.StopAll()
	b.controller.Cleanup()
}

// onEvent runs on the controller's monitor goroutine and drives the state
// machine off worker lifecycle events. It must not block, so it only does
// flag checks and worker starts here.
func (b *Buddy) onEvent(ev workers.Event) {
	if b.closed.Load() {
		return
	}

	switch {
	case ev.Kind == workers.EventFailed && ev.Worker == captureWorkerName:
		if capture.IsTargetNotFound(ev.Err) {
			b.log.Info("target window gone, returning to search")
			if b.metrics != nil {
				b.metrics.TargetLost.Inc()
			}
		}
	case ev.Kind == workers.EventFinished && ev.Worker == searchWorkerName:
		if b.found.Swap(false) {
			b.startCapturing()
		}
	case ev.Kind == workers.EventFinished && ev.Worker == captureWorkerName:
		b.startSearching()
	}
}

func (b *Buddy) startCapturing() {
	_ = b.controller.StopWorker(searchTimerName)
	b.setState(StateCapturing)
	b.display.ShowStatus(statusWatching)

	timer := workers.NewTimerWorker(captureTimerName, b.settings.Target.CaptureInterval)
	b.controller.AddWorker(timer)
	b.controller.AddWorker(newCaptureWorker(b, timer.Ticks()))
	if err := b.controller.StartWorker(captureTimerName); err != nil {
		b.log.Error("could not start capture timer", logger.Error(err))
	}
	if err := b.controller.StartWorker(captureWorkerName); err != nil {
		b.log.Error("could not start capture worker", logger.Error(err))
		_ = b.controller.StopWorker(captureTimerName)
		b.startSearching()
	}
}

func (b *Buddy) startSearching() {
	if err := b.beginSearching(); err != nil {
		b.log.Error("could not restart search workers", logger.Error(err))
	}
}

func (b *Buddy) beginSearching() error {
	_ = b.controller.StopWorker(captureTimerName)
	b.setState(StateSearching)

	timer := workers.NewTimerWorker(searchTimerName, b.settings.Target.SearchInterval)
	b.controller.AddWorker(timer)
	b.controller.AddWorker(newSearchWorker(b, timer.Ticks()))
	if err := b.controller.StartWorker(searchTimerName); err != nil {
		return err
	}
	return b.controller.StartWorker(searchWorkerName)
}
