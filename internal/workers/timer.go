package workers

import (
	"context"
	"time"
)

// Tick is one firing of a TimerWorker
type Tick struct {
	Count int
	At    time.Time
}

// TimerWorker is a worker that emits periodic ticks with an incrementing
// counter. It drives polling without busy-waiting; consumers read Ticks().
// A tick that finds the consumer busy is dropped rather than queued.
type TimerWorker struct {
	Base
	interval time.Duration
	ticks    chan Tick
}

// NewTimerWorker creates a timer worker with the given tick interval.
func NewTimerWorker(name string, interval time.Duration) *TimerWorker {
	return &TimerWorker{
		Base:     NewBase(name),
		interval: interval,
		ticks:    make(chan Tick, 1),
	}
}

// Ticks returns the tick output channel.
func (t *TimerWorker) Ticks() <-chan Tick {
	return t.ticks
}

// Interval returns the configured tick interval.
func (t *TimerWorker) Interval() time.Duration {
	return t.interval
}

// Run arms the interval timer and emits ticks until stop is requested,
// at which point the timer is disarmed and released.
func (t *TimerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			count++
			select {
			case t.ticks <- Tick{Count: count, At: now}:
			default:
				// consumer is behind, drop this tick
			}
		}
	}
}
