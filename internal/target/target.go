// Package target locates the watched game process and its window.
package target

import (
	"github.com/shirou/gopsutil/v3/process"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// Target identifies a located process.
type Target struct {
	PID  int32
	Name string
}

// Probe looks up the target process by name. It is a cheap operation meant
// to be called from a polling tick.
type Probe struct {
	processName string
	windowTitle string
	log         logger.Logger
}

// NewProbe creates a probe for the given process name and window title.
func NewProbe(processName, windowTitle string, log logger.Logger) *Probe {
	return &Probe{
		processName: processName,
		windowTitle: windowTitle,
		log:         log.Module("target"),
	}
}

// Find returns the target process, or nil when it is not running.
// System-level enumeration failures are returned as errors; a simply
// absent process is (nil, nil).
func (p *Probe) Find() (*Target, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, errors.New(err).
			Component("target").
			Category(errors.CategorySystem).
			Context("operation", "list-processes").
			Build()
	}

	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil {
			// processes come and go mid-enumeration
			continue
		}
		if name == p.processName {
			return &Target{PID: proc.Pid, Name: name}, nil
		}
	}
	return nil, nil
}

// Present reports whether the target process is running and, where the
// platform allows the check, has a visible window.
func (p *Probe) Present() bool {
	tgt, err := p.Find()
	if err != nil {
		p.log.Warn("process probe failed", logger.Error(err))
		return false
	}
	if tgt == nil {
		return false
	}
	return hasVisibleWindow(tgt.PID, p.windowTitle)
}

// Alive is a capture.AliveCheck bound to this probe.
func (p *Probe) Alive() bool {
	tgt, err := p.Find()
	return err == nil && tgt != nil
}
