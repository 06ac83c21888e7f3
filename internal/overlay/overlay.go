// Package overlay is the boundary between the capture pipeline and
// whatever presents messages to the player. The GUI lives on the other
// side of the Displayer interface.
package overlay

import (
	"fmt"
	"io"
	"sync"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// Displayer receives messages from the pipeline. Implementations must be
// safe for concurrent use; the search and capture workers both push status
// lines.
type Displayer interface {
	// ShowMessage replaces the current content with a matched message.
	ShowMessage(text string)
	// ShowStatus replaces the current content with a transient status line.
	ShowStatus(text string)
}

// LogDisplayer writes everything to the structured log. Used when no
// visible surface is wanted, for example under the file command.
type LogDisplayer struct {
	log logger.Logger
}

func NewLogDisplayer(log logger.Logger) *LogDisplayer {
	return &LogDisplayer{log: log.Module("overlay")}
}

func (d *LogDisplayer) ShowMessage(text string) {
	d.log.Info("message", logger.String("text", text))
}

func (d *LogDisplayer) ShowStatus(text string) {
	d.log.Info("status", logger.String("text", text))
}

// WriterDisplayer prints to an io.Writer, typically stdout. Repeated
// identical content is suppressed so a 1s status tick does not scroll the
// terminal.
type WriterDisplayer struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func NewWriterDisplayer(w io.Writer) *WriterDisplayer {
	return &WriterDisplayer{w: w}
}

func (d *WriterDisplayer) ShowMessage(text string) { d.show(text) }
func (d *WriterDisplayer) ShowStatus(text string)  { d.show(text) }

func (d *WriterDisplayer) show(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if text == d.last {
		return
	}
	d.last = text
	fmt.Fprintln(d.w, text)
	fmt.Fprintln(d.w, "---")
}
