package errors

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	err := Newf("capture session refused: %s", "device busy").
		Component("capture").
		Category(CategoryCapture).
		Context("window_title", "The Bazaar").
		Build()

	require.Error(t, err)
	assert.Equal(t, "capture session refused: device busy", err.Error())
	assert.Equal(t, "capture", err.GetComponent())
	assert.Equal(t, string(CategoryCapture), err.GetCategory())
	assert.Equal(t, "The Bazaar", err.GetContext()["window_title"])
	assert.WithinDuration(t, time.Now(), err.Timestamp, time.Second)
}

func TestUnwrapPreservesSentinel(t *testing.T) {
	t.Parallel()

	wrapped := New(io.ErrUnexpectedEOF).Category(CategoryFileIO).Build()
	assert.True(t, Is(wrapped, io.ErrUnexpectedEOF))
}

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := Newf("no worker named %q", "search-timer").
		Category(CategoryNotFound).
		Build()

	assert.True(t, IsCategory(err, CategoryNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsCategory(err, CategoryCapture))
	assert.False(t, IsNotFound(io.EOF))
}

func TestIsMatchesComponentAndCategory(t *testing.T) {
	t.Parallel()

	captureTimeout := Newf("acquire overran").
		Component("capture").
		Category(CategoryTimeout).
		Build()
	ocrTimeout := Newf("recognition overran").
		Component("ocr").
		Category(CategoryTimeout).
		Build()
	sameOrigin := Newf("another acquire overran").
		Component("capture").
		Category(CategoryTimeout).
		Build()

	assert.True(t, Is(captureTimeout, sameOrigin))
	assert.False(t, Is(captureTimeout, ocrTimeout))
}

func TestDefaultCategoryIsGeneric(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Build()
	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
	assert.Equal(t, ComponentUnknown, err.GetComponent())
}

func TestTimingContext(t *testing.T) {
	t.Parallel()

	err := Newf("acquire overran").
		Category(CategoryTimeout).
		Timing("acquire", 2500*time.Millisecond).
		Build()

	ctx := err.GetContext()
	assert.Equal(t, "acquire", ctx["operation"])
	assert.EqualValues(t, 2500, ctx["duration_ms"])
}
