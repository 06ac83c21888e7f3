package buddy

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/capture"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/workers"
)

// searchWorker probes for the game process on every tick of the search
// timer. When the target shows up it flags the orchestrator and finishes;
// the lifecycle wiring then starts the capture pair.
type searchWorker struct {
	b     *Buddy
	ticks <-chan workers.Tick
}

func newSearchWorker(b *Buddy, ticks <-chan workers.Tick) *searchWorker {
	return &searchWorker{b: b, ticks: ticks}
}

func (w *searchWorker) Name() string { return searchWorkerName }

func (w *searchWorker) Run(ctx context.Context) error {
	// Check immediately so a game that is already running is picked up
	// without waiting out the first interval.
	if w.check() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.ticks:
			if w.check() {
				return nil
			}
		}
	}
}

func (w *searchWorker) check() bool {
	b := w.b
	b.display.ShowStatus(statusSearching)
	if !b.probe.Present() {
		return false
	}
	b.log.Info("target found", logger.String("process", b.settings.Target.ProcessName()))
	b.found.Store(true)
	return true
}

// captureWorker pulls one frame per tick of the capture timer and pushes
// matched messages to the display. It finishes with an error when the
// target vanishes, which sends the orchestrator back to searching. All
// other per-frame errors are logged and the loop keeps going.
type captureWorker struct {
	b     *Buddy
	ticks <-chan workers.Tick
}

func newCaptureWorker(b *Buddy, ticks <-chan workers.Tick) *captureWorker {
	return &captureWorker{b: b, ticks: ticks}
}

func (w *captureWorker) Name() string { return captureWorkerName }

func (w *captureWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.ticks:
			if err := w.tick(ctx); err != nil {
				return err
			}
		}
	}
}

// tick runs one acquire → extract → match → display pass. A nil frame
// with nil error means the acquire timed out; that is routine and the
// loop just tries again. Frame processing happens inline, so a timer tick
// that fires while the previous frame is still in OCR is dropped by the
// timer instead of queueing up.
func (w *captureWorker) tick(ctx context.Context) error {
	b := w.b

	frame, err := b.acquirer.Acquire(ctx, b.settings.Target.AcquireTimeout)
	if err != nil {
		if capture.IsTargetNotFound(err) {
			return err
		}
		if ctx.Err() != nil {
			// stop requested mid-acquire, not a capture failure
			return nil
		}
		b.log.Warn("frame acquisition failed", logger.Error(err))
		return nil
	}
	if frame == nil {
		b.log.Debug("no frame within acquire timeout")
		if b.metrics != nil {
			b.metrics.AcquireTimeouts.Inc()
		}
		return nil
	}

	if b.metrics != nil {
		b.metrics.FramesCaptured.Inc()
	}
	if b.settings.Capture.SaveFrames {
		w.saveFrame(frame)
	}

	start := time.Now()
	result, err := b.extractor.Extract(frame)
	if err != nil {
		b.log.Warn("text extraction failed", logger.Error(err))
		return nil
	}
	if b.metrics != nil {
		b.metrics.RecordOCRDuration(time.Since(start))
	}
	if result.Text == "" {
		return nil
	}
	b.log.Debug("parsed text", logger.String("text", result.Text))

	msg, ok := b.matcher.Lookup(result.Text)
	if b.metrics != nil {
		if ok {
			b.metrics.RecordMatch("matched")
		} else {
			b.metrics.RecordMatch("unmatched")
		}
	}
	if ok {
		b.display.ShowMessage(msg)
	}
	return nil
}

func (w *captureWorker) saveFrame(frame image.Image) {
	b := w.b
	name := fmt.Sprintf("frame_%s.png", time.Now().Format("20060102_150405.000000"))
	path := filepath.Join(conf.GetBasePath(b.settings.Capture.SavePath), name)
	if err := imaging.Save(frame, path); err != nil {
		b.log.Warn("could not save frame",
			logger.String("path", path),
			logger.Error(err))
	}
}
