// Package watch implements the realtime mode: search for the game,
// capture and read frames until interrupted.
package watch

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/buddy"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/capture"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/knowledge"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/metrics"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/ocr"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/overlay"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/target"
)

// Command creates the watch command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch for the game in realtime mode",
		Long:  "Wait for the game to start, then capture its window and show what is known about the current screen.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().BoolVar(&settings.Capture.SaveFrames, "saveframes", viper.GetBool("capture.saveframes"), "Save captured frames to disk")
	cmd.Flags().StringVar(&settings.Capture.SavePath, "savepath", viper.GetString("capture.savepath"), "Directory for saved frames")
	cmd.Flags().BoolVar(&settings.Metrics.Enabled, "metrics", viper.GetBool("metrics.enabled"), "Enable Prometheus metrics endpoint")
	cmd.Flags().StringVar(&settings.Metrics.Listen, "listen", viper.GetString("metrics.listen"), "Listen address of the metrics endpoint")

	_ = viper.BindPFlags(cmd.Flags())
}

func run(settings *conf.Settings) error {
	log := logger.Global()

	probe := target.NewProbe(settings.Target.ProcessName(), settings.Target.WindowTitle, log)

	session, err := capture.NewSession(settings, probe.Alive, log)
	if err != nil {
		return err
	}
	acquirer := capture.NewAcquirer(session, log)

	base, err := knowledge.Load(settings.Knowledge, log)
	if err != nil {
		return err
	}
	extractor := ocr.NewExtractor(settings.OCR, log)
	display := overlay.NewWriterDisplayer(os.Stdout)

	var m *metrics.Metrics
	var endpoint *metrics.Endpoint
	if settings.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		if m, err = metrics.New(registry); err != nil {
			return err
		}
		if endpoint, err = metrics.NewEndpoint(settings.Metrics, registry, log); err != nil {
			return err
		}
		endpoint.Start()
	}

	b := buddy.New(settings, probe, acquirer, extractor, base, display, m, log)
	if err := b.BeginSearch(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	log.Info("shutting down", logger.String("signal", s.String()))

	b.Shutdown()
	if endpoint != nil {
		endpoint.Shutdown()
	}
	return nil
}
