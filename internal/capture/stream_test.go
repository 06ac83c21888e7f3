package capture

import (
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

func TestStreamSessionDeliversFrames(t *testing.T) {
	t.Parallel()

	s := newStreamSession("test", func() (image.Image, error) {
		return testFrame(), nil
	}, logger.Discard())

	frames := make(chan image.Image, 8)
	require.NoError(t, s.Start(Callbacks{
		FrameArrived: func(img image.Image) {
			select {
			case frames <- img:
			default:
			}
		},
		Closed: func(err error) { t.Errorf("unexpected close: %v", err) },
	}))

	select {
	case img := <-frames:
		assert.NotNil(t, img)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "stop must be idempotent")
}

func TestStreamSessionStartFailsWhenTargetMissing(t *testing.T) {
	t.Parallel()

	grabErr := errors.NewStd("window not found: The Bazaar")
	s := newStreamSession("test", func() (image.Image, error) {
		return nil, grabErr
	}, logger.Discard())

	err := s.Start(Callbacks{})
	require.Error(t, err)
	assert.True(t, errors.Is(translate(err), ErrTargetNotFound))
}

func TestStreamSessionClosesWhenTargetVanishes(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	s := newStreamSession("test", func() (image.Image, error) {
		if calls.Add(1) > 1 {
			return nil, ErrTargetNotFound
		}
		return testFrame(), nil
	}, logger.Discard())

	closed := make(chan error, 1)
	require.NoError(t, s.Start(Callbacks{
		FrameArrived: func(image.Image) {},
		Closed:       func(err error) { closed <- err },
	}))

	select {
	case err := <-closed:
		assert.True(t, errors.Is(err, ErrTargetNotFound))
	case <-time.After(2 * time.Second):
		t.Fatal("session did not close after target vanished")
	}

	// A self-closed session can be started again.
	calls.Store(0)
	require.NoError(t, s.Start(Callbacks{
		FrameArrived: func(image.Image) {},
		Closed:       func(error) {},
	}))
	require.NoError(t, s.Stop())
}

func TestStreamSessionDoubleStartRejected(t *testing.T) {
	t.Parallel()

	s := newStreamSession("test", func() (image.Image, error) {
		return testFrame(), nil
	}, logger.Discard())

	require.NoError(t, s.Start(Callbacks{FrameArrived: func(image.Image) {}, Closed: func(error) {}}))
	defer func() { _ = s.Stop() }()

	err := s.Start(Callbacks{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}

func TestTranslateMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		isLost bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrTargetNotFound, true},
		{"windows message", errors.NewStd("Capture failed: Failed To Find Window"), true},
		{"close message", errors.NewStd("capture window closed"), true},
		{"unrelated", errors.NewStd("device busy"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := translate(tt.err)
			if tt.isLost {
				assert.True(t, errors.Is(got, ErrTargetNotFound))
			} else if tt.err == nil {
				assert.NoError(t, got)
			} else {
				assert.False(t, errors.Is(got, ErrTargetNotFound))
			}
		})
	}
}
