package capture

import (
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// NewSession selects the capture session implementation for the configured
// backend. "auto" picks the best backend for the current platform.
func NewSession(settings *conf.Settings, alive AliveCheck, log logger.Logger) (Session, error) {
	switch settings.Capture.Backend {
	case "", "auto", "window", "display":
		return newPlatformSession(settings.Target.WindowTitle, alive, log), nil
	default:
		return nil, errors.Newf("unknown capture backend %q", settings.Capture.Backend).
			Component("capture").
			Category(errors.CategoryConfiguration).
			Context("backend", settings.Capture.Backend).
			Build()
	}
}
