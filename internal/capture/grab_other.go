//go:build !windows

package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// newDisplayGrab returns a grab function that captures the primary display.
// Per-window capture is not portable off Windows, so the alive check stands
// in for window existence: a vanished target process closes the session.
func newDisplayGrab(alive AliveCheck) func() (image.Image, error) {
	return func() (image.Image, error) {
		if alive != nil && !alive() {
			return nil, fmt.Errorf("%w: target process is gone", ErrTargetNotFound)
		}
		if screenshot.NumActiveDisplays() < 1 {
			return nil, fmt.Errorf("no active display to capture")
		}
		img, err := screenshot.CaptureDisplay(0)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
}

// newPlatformSession falls back to display capture off Windows.
func newPlatformSession(_ string, alive AliveCheck, log logger.Logger) Session {
	return newStreamSession("display", newDisplayGrab(alive), log)
}
