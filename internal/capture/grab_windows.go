//go:build windows

package capture

import (
	"fmt"
	"image"
	"syscall"
	"unsafe"

	"github.com/kbinani/screenshot"
	"golang.org/x/sys/windows"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW     = user32.NewProc("FindWindowW")
	procGetWindowRect   = user32.NewProc("GetWindowRect")
	procIsWindowVisible = user32.NewProc("IsWindowVisible")
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

// findWindow resolves the window handle for a title, zero when absent.
func findWindow(title string) (windows.Handle, error) {
	titlePtr, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	return windows.Handle(hwnd), nil
}

func windowRect(hwnd windows.Handle) (image.Rectangle, error) {
	var r winRect
	ret, _, err := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return image.Rectangle{}, fmt.Errorf("GetWindowRect: %w", err)
	}
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)), nil
}

func isWindowVisible(hwnd windows.Handle) bool {
	ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	return ret != 0
}

// newWindowGrab returns a grab function that captures the client area of
// the window with the given title. The window is re-resolved on every grab
// so a closed window turns into ErrTargetNotFound instead of a stale frame.
func newWindowGrab(title string) func() (image.Image, error) {
	return func() (image.Image, error) {
		hwnd, err := findWindow(title)
		if err != nil {
			return nil, err
		}
		if hwnd == 0 || !isWindowVisible(hwnd) {
			return nil, fmt.Errorf("%w: no visible window titled %q", ErrTargetNotFound, title)
		}
		rect, err := windowRect(hwnd)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTargetNotFound, err)
		}
		if rect.Dx() <= 0 || rect.Dy() <= 0 {
			return nil, fmt.Errorf("%w: window %q has empty bounds", ErrTargetNotFound, title)
		}
		img, err := screenshot.CaptureRect(rect)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
}

// newPlatformSession captures the target window directly on Windows.
func newPlatformSession(windowTitle string, _ AliveCheck, log logger.Logger) Session {
	return newStreamSession("window", newWindowGrab(windowTitle), log)
}
