package capture

import (
	"fmt"
	"strings"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
)

// ErrTargetNotFound marks a capture failure that is fatal for the current
// session: the target window or process no longer exists. Callers should
// stop retrying and re-enter their search phase. Check with
// errors.Is(err, capture.ErrTargetNotFound).
var ErrTargetNotFound = errors.NewStd("capture target not found")

// targetLostMarkers are message fragments from native layers that signal a
// vanished target. Structured sentinel errors from our own adapters are
// preferred; the text match exists only for errors surfaced out of layers
// we do not control.
var targetLostMarkers = []string{
	"failed to find window",
	"window not found",
	"window closed",
	"target not found",
}

// IsTargetNotFound reports whether err (or anything it wraps) is the
// target-gone sentinel.
func IsTargetNotFound(err error) bool {
	return errors.Is(err, ErrTargetNotFound)
}

// translate normalizes a session error: anything that indicates the target
// is gone becomes an ErrTargetNotFound chain, no matter whether it happened
// at start time or mid-session.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTargetNotFound) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range targetLostMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrTargetNotFound, err)
		}
	}
	return err
}

// wrapSessionError attaches capture-domain metadata to a session error.
func wrapSessionError(err error, operation string) error {
	return errors.New(translate(err)).
		Component("capture").
		Category(errors.CategoryCapture).
		Context("operation", operation).
		Build()
}
