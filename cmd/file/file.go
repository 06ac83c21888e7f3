// Package file implements the one-shot mode: read a single image from
// disk and print the matched message.
package file

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/knowledge"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/ocr"
)

// Command creates the file command for reading a single screenshot.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [input.png]",
		Short: "Read a screenshot from disk",
		Long:  "Run text extraction on a single image file and print the matched message.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, args[0])
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.OCR.Language, "language", viper.GetString("ocr.language"), "Tesseract language")
	cmd.Flags().IntVar(&settings.OCR.ConfidenceThreshold, "confidence", viper.GetInt("ocr.confidencethreshold"), "Minimum word confidence (0-100)")

	_ = viper.BindPFlags(cmd.Flags())
}

func run(settings *conf.Settings, path string) error {
	log := logger.Global()

	img, err := imaging.Open(path)
	if err != nil {
		return errors.New(err).
			Component("cmd").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	extractor := ocr.NewExtractor(settings.OCR, log)
	result, err := extractor.Extract(img)
	if err != nil {
		return err
	}
	log.Debug("parsed text", logger.String("text", result.Text))

	base, err := knowledge.Load(settings.Knowledge, log)
	if err != nil {
		return err
	}

	msg, ok := base.Lookup(result.Text)
	if !ok {
		fmt.Fprintln(os.Stdout, "no match")
		return nil
	}
	fmt.Fprintln(os.Stdout, msg)
	return nil
}
