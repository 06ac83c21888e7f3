package workers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// DefaultStopGrace is how long StopWorker waits for a worker goroutine to
// exit before giving up and leaving the record for Cleanup.
const DefaultStopGrace = 3000 * time.Millisecond

// record pairs a worker with its goroutine state. It lives in the
// controller registry from AddWorker until a successful stop or Cleanup.
type record struct {
	worker   Worker
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
	detached atomic.Bool // true once stop has been requested; mutes event wiring
}

// Controller manages worker goroutines with proper lifecycle management.
// The public API is intended to be driven from a single controlling
// goroutine; the internal mutex exists so the finished→stop wiring, which
// runs on the controller's monitor goroutine, can join in safely.
type Controller struct {
	mu      sync.Mutex
	workers map[string]*record

	events      chan Event
	quit        chan struct{}
	monitorDone chan struct{}
	closeOnce   sync.Once

	grace         time.Duration
	log           logger.Logger
	onEvent       func(Event)  // optional observer, used by tests and the orchestrator
	onStopTimeout func(string) // optional hook fired when a worker misses its grace period
}

// Option configures a Controller
type Option func(*Controller)

// WithStopGrace overrides the stop grace period
func WithStopGrace(d time.Duration) Option {
	return func(c *Controller) { c.grace = d }
}

// WithEventObserver registers a callback invoked for every lifecycle event
// after the controller's own wiring has run. The callback executes on the
// monitor goroutine and must return promptly; controller calls that wait a
// bounded grace period (StopWorker of a cooperative worker) are fine,
// anything unbounded stalls event delivery.
func WithEventObserver(fn func(Event)) Option {
	return func(c *Controller) { c.onEvent = fn }
}

// WithStopTimeoutObserver registers a callback invoked with the worker name
// whenever StopWorker gives up waiting for a goroutine to exit. It runs on
// the goroutine calling StopWorker.
func WithStopTimeoutObserver(fn func(worker string)) Option {
	return func(c *Controller) { c.onStopTimeout = fn }
}

// NewController creates a controller and starts its event monitor.
func NewController(log logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		workers:     make(map[string]*record),
		events:      make(chan Event, 64),
		quit:        make(chan struct{}),
		monitorDone: make(chan struct{}),
		grace:       DefaultStopGrace,
		log:         log.Module("workers"),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.monitor()
	return c
}

// AddWorker registers a worker under its name and returns the name.
// Registration is idempotent by name: adding a second worker with an
// existing name is a no-op that returns the existing name. The worker is
// not started.
func (c *Controller) AddWorker(w Worker) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := w.Name()
	if _, exists := c.workers[name]; exists {
		return name
	}

	c.workers[name] = &record{worker: w}
	c.log.Info("added worker", logger.String("worker", name))
	return name
}

// StartWorker starts the named worker on its own goroutine.
func (c *Controller) StartWorker(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.workers[name]
	if !ok {
		return errors.Newf("no worker named %q", name).
			Component("workers").
			Category(errors.CategoryNotFound).
			Context("worker", name).
			Build()
	}
	if rec.started {
		return errors.Newf("worker %q is already running", name).
			Component("workers").
			Category(errors.CategoryState).
			Context("worker", name).
			Build()
	}

	ctx, cancel := context.WithCancel(context.Background())
	rec.cancel = cancel
	rec.done = make(chan struct{})
	rec.started = true
	rec.detached.Store(false)

	go c.runWorker(rec, ctx)
	c.log.Info("started worker", logger.String("worker", name))
	return nil
}

// runWorker executes the worker body on its dedicated goroutine,
// converting panics into failed events so a misbehaving worker can never
// crash the controlling goroutine. Signal ordering within one worker is
// strict: started before the body, failed/finished after.
func (c *Controller) runWorker(rec *record, ctx context.Context) {
	defer close(rec.done)

	name := rec.worker.Name()
	c.emit(Event{Worker: name, Kind: EventStarted})

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("worker panic: %v", r)
			}
		}()
		err = rec.worker.Run(ctx)
	}()

	if err != nil {
		c.emit(Event{Worker: name, Kind: EventFailed, Err: err})
	}
	c.emit(Event{Worker: name, Kind: EventFinished})
}

// emit delivers a lifecycle event to the monitor without ever blocking a
// worker goroutine past controller shutdown.
func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.quit:
	}
}

// monitor is the controller's default wiring: failures go to the log sink,
// finished workers are stopped and removed.
func (c *Controller) monitor() {
	defer close(c.monitorDone)
	for {
		select {
		case <-c.quit:
			return
		case ev := <-c.events:
			if !c.isDetached(ev.Worker) {
				switch ev.Kind {
				case EventFailed:
					c.log.Error("worker error",
						logger.String("worker", ev.Worker),
						logger.Error(ev.Err))
				case EventFinished:
					_ = c.StopWorker(ev.Worker)
				case EventStarted:
					// nothing to wire
				}
			}
			if c.onEvent != nil {
				c.onEvent(ev)
			}
		}
	}
}

func (c *Controller) isDetached(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.workers[name]
	if !ok {
		return true
	}
	return rec.detached.Load()
}

// StopWorker requests cooperative stop of the named worker and waits up to
// the grace period for its goroutine to exit. Unknown names are a no-op.
// On success the record is removed; on timeout a warning is logged and the
// record stays in place until Cleanup.
func (c *Controller) StopWorker(name string) error {
	c.mu.Lock()
	rec, ok := c.workers[name]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	rec.detached.Store(true)
	if !rec.started {
		delete(c.workers, name)
		c.mu.Unlock()
		return nil
	}
	cancel := rec.cancel
	done := rec.done
	c.mu.Unlock()

	cancel()
	if sn, ok := rec.worker.(StopNotifier); ok {
		sn.OnStopRequested()
	}

	timer := time.NewTimer(c.grace)
	defer timer.Stop()
	select {
	case <-done:
		c.mu.Lock()
		delete(c.workers, name)
		c.mu.Unlock()
		c.log.Info("stopped worker", logger.String("worker", name))
		return nil
	case <-timer.C:
		c.log.Warn("worker did not stop cleanly",
			logger.String("worker", name),
			logger.Duration("grace", c.grace))
		if c.onStopTimeout != nil {
			c.onStopTimeout(name)
		}
		return nil
	}
}

// StartAll starts every registered worker. Order across workers is
// unspecified.
func (c *Controller) StartAll() {
	c.log.Info("starting all workers")
	for _, name := range c.names() {
		if err := c.StartWorker(name); err != nil {
			c.log.Warn("could not start worker",
				logger.String("worker", name),
				logger.Error(err))
		}
	}
}

// StopAll stops every registered worker. Order across workers is
// unspecified.
func (c *Controller) StopAll() {
	c.log.Info("stopping all workers")
	for _, name := range c.names() {
		_ = c.StopWorker(name)
	}
}

// Cleanup abandons any worker whose goroutine is still running after the
// grace period expired, removes all remaining records and stops the event
// monitor. Goroutines cannot be terminated in Go, so the worker is
// detached and leaked with a warning instead; the process can still exit.
// Intended to run once at process shutdown.
func (c *Controller) Cleanup() {
	c.log.Info("performing final cleanup")

	c.mu.Lock()
	for name, rec := range c.workers {
		if rec.started {
			select {
			case <-rec.done:
				// goroutine already exited
			default:
				c.log.Warn("abandoning worker goroutine",
					logger.String("worker", name))
				rec.cancel()
			}
		}
		delete(c.workers, name)
	}
	c.mu.Unlock()

	c.closeOnce.Do(func() { close(c.quit) })
	<-c.monitorDone
}

// GetWorkerByName returns the registered worker for inspection or wiring.
func (c *Controller) GetWorkerByName(name string) (Worker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.workers[name]
	if !ok {
		return nil, errors.Newf("no worker named %q", name).
			Component("workers").
			Category(errors.CategoryNotFound).
			Context("worker", name).
			Build()
	}
	return rec.worker, nil
}

// Running reports whether the named worker is registered and started.
func (c *Controller) Running(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.workers[name]
	if !ok || !rec.started {
		return false
	}
	select {
	case <-rec.done:
		return false
	default:
		return true
	}
}

// names snapshots the registry keys so Start/StopAll can iterate without
// holding the lock across per-worker operations.
func (c *Controller) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.workers))
	for name := range c.workers {
		names = append(names, name)
	}
	return names
}
