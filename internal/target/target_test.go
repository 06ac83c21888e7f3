package target

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

func ownProcessName(t *testing.T) string {
	t.Helper()
	proc, err := process.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)
	name, err := proc.Name()
	require.NoError(t, err)
	return name
}

func TestFindLocatesRunningProcess(t *testing.T) {
	t.Parallel()

	name := ownProcessName(t)
	probe := NewProbe(name, "irrelevant", logger.Discard())

	tgt, err := probe.Find()
	require.NoError(t, err)
	require.NotNil(t, tgt, "the test binary itself must be findable")
	assert.Equal(t, name, tgt.Name)
	assert.Positive(t, tgt.PID)
}

func TestFindAbsentProcessIsNilNotError(t *testing.T) {
	t.Parallel()

	probe := NewProbe("definitely-not-a-real-process-name.exe", "none", logger.Discard())

	tgt, err := probe.Find()
	assert.NoError(t, err)
	assert.Nil(t, tgt)
}

func TestAliveTracksProcess(t *testing.T) {
	t.Parallel()

	alive := NewProbe(ownProcessName(t), "none", logger.Discard())
	gone := NewProbe("definitely-not-a-real-process-name.exe", "none", logger.Discard())

	assert.True(t, alive.Alive())
	assert.False(t, gone.Alive())
	assert.False(t, gone.Present())
}

func TestPresentWithoutWindowCheckPlatforms(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("off-Windows behavior only")
	}

	// Off Windows a running process counts as present.
	probe := NewProbe(ownProcessName(t), filepath.Base(os.Args[0]), logger.Discard())
	assert.True(t, probe.Present())
}
