// Package ocr extracts text from captured frames using Tesseract.
package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// Word is a single recognized word with its Tesseract confidence (0-100).
type Word struct {
	Text       string
	Confidence float64
	Bounds     image.Rectangle
}

// Result holds the outcome of a single extraction pass.
type Result struct {
	// Text is the confident words joined with single spaces.
	Text string
	// Words lists every word that met the confidence threshold.
	Words []Word
}

// Extractor runs Tesseract over frames and keeps only words whose
// confidence meets the configured threshold. It is safe for use from a
// single goroutine; the capture worker owns one instance.
type Extractor struct {
	language  string
	threshold float64
	tessdata  string
	log       logger.Logger
}

// NewExtractor builds an Extractor from the OCR settings.
func NewExtractor(cfg conf.OCRSettings, log logger.Logger) *Extractor {
	return &Extractor{
		language:  cfg.Language,
		threshold: float64(cfg.ConfidenceThreshold),
		tessdata:  cfg.TessdataPrefix,
		log:       log.Module("ocr"),
	}
}

// Extract runs OCR on the frame and returns the confident words. A frame
// with no confident words yields an empty Result, not an error.
func (e *Extractor) Extract(frame image.Image) (*Result, error) {
	prepared := Preprocess(frame)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, errors.New(err).
			Component("ocr").
			Category(errors.CategoryImage).
			Context("operation", "encode_frame").
			Build()
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.tessdata != "" {
		if err := client.SetTessdataPrefix(e.tessdata); err != nil {
			return nil, errors.New(err).
				Component("ocr").
				Category(errors.CategoryConfiguration).
				Context("tessdata_prefix", e.tessdata).
				Build()
		}
	}
	if err := client.SetLanguage(e.language); err != nil {
		return nil, errors.New(err).
			Component("ocr").
			Category(errors.CategoryConfiguration).
			Context("language", e.language).
			Build()
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, errors.New(err).
			Component("ocr").
			Category(errors.CategoryOCR).
			Context("operation", "set_image").
			Build()
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errors.New(err).
			Component("ocr").
			Category(errors.CategoryOCR).
			Context("operation", "bounding_boxes").
			Build()
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		w := Word{
			Text:       box.Word,
			Confidence: box.Confidence,
			Bounds:     box.Box,
		}
		words = append(words, w)
	}

	result := FilterWords(words, e.threshold)
	e.log.Debug("ocr pass complete",
		logger.Int("raw_words", len(words)),
		logger.Int("confident_words", len(result.Words)))
	return result, nil
}

// FilterWords keeps words at or above the confidence threshold and joins
// their text with single spaces. Empty words are dropped regardless of
// confidence.
func FilterWords(words []Word, threshold float64) *Result {
	kept := make([]Word, 0, len(words))
	var buf bytes.Buffer
	for _, w := range words {
		if w.Text == "" || w.Confidence < threshold {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(w.Text)
		kept = append(kept, w)
	}
	return &Result{Text: buf.String(), Words: kept}
}

// Preprocess prepares a frame for Tesseract. Game frames render text over
// busy backgrounds at modest sizes, so the frame is upscaled 2x and
// converted to grayscale before recognition.
func Preprocess(frame image.Image) image.Image {
	bounds := frame.Bounds()
	scaled := imaging.Resize(frame, bounds.Dx()*2, 0, imaging.Lanczos)
	return imaging.Grayscale(scaled)
}
