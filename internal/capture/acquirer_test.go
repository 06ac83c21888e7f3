package capture

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// fakeSession scripts native session behavior for acquirer tests.
type fakeSession struct {
	mu        sync.Mutex
	startErr  error
	frameWait time.Duration // deliver a frame after this delay; 0 = never
	closeWith error         // call Closed with this instead of a frame
	closeNil  bool          // call Closed(nil)

	active  atomic.Int32 // concurrent start..stop sections, must never exceed 1
	maxSeen atomic.Int32
	starts  atomic.Int32
	stops   atomic.Int32
	timers  []*time.Timer
}

func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func (f *fakeSession) Start(cb Callbacks) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.startErr != nil {
		return f.startErr
	}

	n := f.active.Add(1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	f.starts.Add(1)

	switch {
	case f.closeNil:
		f.timers = append(f.timers, time.AfterFunc(time.Millisecond, func() { cb.Closed(nil) }))
	case f.closeWith != nil:
		err := f.closeWith
		f.timers = append(f.timers, time.AfterFunc(time.Millisecond, func() { cb.Closed(err) }))
	case f.frameWait > 0:
		f.timers = append(f.timers, time.AfterFunc(f.frameWait, func() { cb.FrameArrived(testFrame()) }))
	}
	return nil
}

func (f *fakeSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active.Add(-1)
	f.stops.Add(1)
	return nil
}

func TestAcquireReturnsFrame(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{frameWait: 5 * time.Millisecond}
	a := NewAcquirer(fs, logger.Discard())

	img, err := a.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.EqualValues(t, 1, fs.stops.Load(), "session must be released after a frame")
}

func TestAcquireTimeoutReturnsNoFrame(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{} // never calls back
	a := NewAcquirer(fs, logger.Discard())

	start := time.Now()
	img, err := a.Acquire(context.Background(), 100*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err, "a timeout is transient, not a failure")
	assert.Nil(t, img)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "timeout is a minimum wait")
	assert.Less(t, elapsed, time.Second, "timeout overran far beyond scheduling slack")
	assert.EqualValues(t, 1, fs.stops.Load(), "session must be released on timeout")
}

func TestAcquireStartFailureIsTargetNotFound(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{startErr: errors.NewStd("Failed To Find Window")}
	a := NewAcquirer(fs, logger.Discard())

	img, err := a.Acquire(context.Background(), time.Second)
	assert.Nil(t, img)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetNotFound),
		"start-time window loss must surface as the distinguished error kind")
}

func TestAcquireMidWaitCloseIsTargetNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fs   *fakeSession
	}{
		{"message from native layer", &fakeSession{closeWith: errors.NewStd("capture Window Closed unexpectedly")}},
		{"plain close without error", &fakeSession{closeNil: true}},
		{"structured sentinel", &fakeSession{closeWith: ErrTargetNotFound}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := NewAcquirer(tt.fs, logger.Discard())
			img, err := a.Acquire(context.Background(), time.Second)
			assert.Nil(t, img)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTargetNotFound))
			assert.EqualValues(t, 1, tt.fs.stops.Load())
		})
	}
}

func TestAcquireGenericErrorStaysGeneric(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{closeWith: errors.NewStd("frame buffer alignment error")}
	a := NewAcquirer(fs, logger.Discard())

	_, err := a.Acquire(context.Background(), time.Second)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTargetNotFound))
	assert.True(t, errors.IsCategory(err, errors.CategoryCapture))
}

func TestAcquireMutualExclusion(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{frameWait: 10 * time.Millisecond}
	a := NewAcquirer(fs, logger.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Acquire(context.Background(), time.Second)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, fs.maxSeen.Load(),
		"no two acquire bodies may hold the session concurrently")
	assert.EqualValues(t, 8, fs.starts.Load())
	assert.EqualValues(t, 8, fs.stops.Load())
}

func TestAcquireReleasesLockOnEveryPath(t *testing.T) {
	t.Parallel()

	// Walk one resource through failure, timeout and success; each
	// subsequent call must be able to take the lock again.
	fs := &fakeSession{startErr: errors.NewStd("Failed To Find Window")}
	a := NewAcquirer(fs, logger.Discard())

	_, err := a.Acquire(context.Background(), 50*time.Millisecond)
	require.Error(t, err)

	fs.mu.Lock()
	fs.startErr = nil
	fs.mu.Unlock()

	img, err := a.Acquire(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, img, "no callback scripted, expect timeout")

	fs.mu.Lock()
	fs.frameWait = time.Millisecond
	fs.mu.Unlock()

	img, err = a.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{} // never calls back
	a := NewAcquirer(fs, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := a.Acquire(ctx, 10*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second,
		"cancellation must unblock acquire ahead of its timeout")
	assert.EqualValues(t, 1, fs.stops.Load())
}

func TestAcquireChecksContextBeforeArming(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{frameWait: time.Millisecond}
	a := NewAcquirer(fs, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Acquire(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, fs.starts.Load(), "cancelled call must not arm the session")
}

func TestDefaultTimeoutApplied(t *testing.T) {
	t.Parallel()

	fs := &fakeSession{frameWait: time.Millisecond}
	a := NewAcquirer(fs, logger.Discard())

	img, err := a.Acquire(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, img)
}
