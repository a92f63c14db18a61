// Package ocr extracts text from images with Tesseract and picks the page
// segmentation mode that produces the most text-like output.
//
// Three engines are available:
//   - Tesseract runs the tesseract binary as a subprocess (default).
//   - Gosseract links libtesseract in-process; it is only compiled with the
//     "gosseract" build tag and otherwise returns ErrEngineNotCompiled.
//   - Vision calls Google Cloud Vision document text detection and ignores
//     the segmentation mode.
//
// The tesseract engines request the combined Indonesian and English language
// models and the LSTM engine (--oem 3) unless configured otherwise.
//
// Extraction failures are non-fatal for the pipeline. Engines return an error
// describing what went wrong; ExtractOrEmpty turns that into an empty string
// and a log line, which is the contract the pipeline relies on.
package ocr

import (
	"context"
	"strings"

	"ocrfix/internal/logger"
)

// DefaultLanguages is the tesseract language string used when none is configured.
const DefaultLanguages = "ind+eng"

// DefaultEngineMode selects the LSTM-based engine.
const DefaultEngineMode = 3

// Extractor defines the interface for OCR text extraction engines.
type Extractor interface {
	// Name identifies the engine in logs and reports.
	Name() string

	// Available checks that the engine can run at all.
	Available(ctx context.Context) error

	// Extract returns the text found in the image using the given segmentation mode.
	// The text is trimmed of surrounding whitespace.
	Extract(ctx context.Context, imagePath string, mode Mode) (string, error)
}

// ExtractOrEmpty runs ex and returns an empty string if it fails. The failure is logged.
func ExtractOrEmpty(ctx context.Context, ex Extractor, imagePath string, mode Mode) string {
	text, err := ex.Extract(ctx, imagePath, mode)
	if err != nil {
		log := logger.WithComponent("ocr")
		log.Warn().
			Err(err).
			Str("engine", ex.Name()).
			Str("image", imagePath).
			Int("psm", int(mode)).
			Msg("Text extraction failed, continuing with empty text")
		return ""
	}
	return strings.TrimSpace(text)
}
