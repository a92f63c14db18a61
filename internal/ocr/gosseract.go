//go:build gosseract

package ocr

import (
	"context"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
	"ocrfix/internal/logger"
)

// Gosseract implements Extractor with libtesseract linked in-process.
// It is only available when built with -tags gosseract.
type Gosseract struct {
	languages []string
	log       zerolog.Logger
}

// NewGosseract creates an in-process extractor for languages such as "ind+eng".
func NewGosseract(languages string) (Extractor, error) {
	if languages == "" {
		languages = DefaultLanguages
	}
	return &Gosseract{
		languages: strings.Split(languages, "+"),
		log:       logger.WithComponent("ocr-gosseract"),
	}, nil
}

// Name implements Extractor.
func (g *Gosseract) Name() string {
	return "gosseract"
}

// Available implements Extractor by creating and closing a client.
func (g *Gosseract) Available(ctx context.Context) error {
	const op = "Available"

	installed, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return NewOCRError(op, "", ErrEngineUnavailable, err.Error())
	}
	for _, lang := range g.languages {
		if !slices.Contains(installed, lang) {
			return NewOCRError(op, "", ErrEngineUnavailable, "language data not installed: "+lang)
		}
	}
	g.log.Debug().Str("version", gosseract.Version()).Msg("libtesseract is available")
	return nil
}

// Extract implements Extractor. A client is created per call because the
// segmentation mode changes between calls during auto-detection.
func (g *Gosseract) Extract(ctx context.Context, imagePath string, mode Mode) (string, error) {
	const op = "Extract"

	if !mode.Valid() {
		return "", NewOCRError(op, imagePath, ErrInvalidMode, mode.String())
	}
	if err := ctx.Err(); err != nil {
		return "", NewOCRError(op, imagePath, err, "")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.languages...); err != nil {
		return "", NewOCRError(op, imagePath, ErrEngineUnavailable, err.Error())
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, err.Error())
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, err.Error())
	}

	text, err := client.Text()
	if err != nil {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, err.Error())
	}
	return strings.TrimSpace(text), nil
}
