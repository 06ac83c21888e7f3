package logger

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModuleScoping(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewBufferLogger(buf).Module("workers").Module("timer")

	log.Info("tick", Int("count", 3))

	out := buf.String()
	assert.Contains(t, out, "module=workers.timer")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "tick")
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelWarn, false)

	log.Debug("hidden")
	log.Info("also hidden")
	log.Warn("visible")
	log.Error("also visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "also visible")
}

func TestWithFieldsPersist(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewBufferLogger(buf).With(String("worker", "search-timer"))

	log.Info("started")
	log.Info("stopped")

	out := buf.String()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("worker=search-timer")), out)
}

func TestFieldConstructors(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewBufferLogger(buf)

	log.Info("fields",
		Error(errors.New("window closed")),
		Duration("grace", 3*time.Second),
		Bool("running", true),
		Float64("confidence", 80.5),
	)

	out := buf.String()
	assert.Contains(t, out, `error="window closed"`)
	assert.Contains(t, out, "grace=3s")
	assert.Contains(t, out, "running=true")
	assert.Contains(t, out, "confidence=80.5")
}

func TestGlobalIsUsableWithoutInit(t *testing.T) {
	// Not parallel: touches package-level state.
	assert.NotNil(t, Global())
	assert.NotNil(t, Global().Module("test"))
}
