package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"ocrfix/internal/logger"
)

// MinPreprocessHeight is the height below which Preprocessor upscales an image.
const MinPreprocessHeight = 800

// PreprocessTargetHeight is the height small images are upscaled to.
const PreprocessTargetHeight = 1200

// Preprocessor converts images to grayscale and upscales small ones before
// they are handed to the OCR engine. The result is written as a temporary PNG.
type Preprocessor struct {
	// TempDir is where prepared images are written; empty means os.TempDir().
	TempDir string

	log zerolog.Logger
}

// NewPreprocessor creates a Preprocessor writing to the system temp directory.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{log: logger.WithComponent("ocr-preprocess")}
}

// Prepare writes a preprocessed copy of imagePath and returns its path together
// with a cleanup function that removes it. The caller must call cleanup.
func (p *Preprocessor) Prepare(imagePath string) (string, func(), error) {
	const op = "Prepare"

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", nil, NewOCRError(op, imagePath, err, "failed to decode image")
	}

	img = imaging.Grayscale(img)
	if h := img.Bounds().Dy(); h > 0 && h < MinPreprocessHeight {
		img = imaging.Resize(img, 0, PreprocessTargetHeight, imaging.Lanczos)
	}

	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	tmp, err := os.CreateTemp(p.TempDir, fmt.Sprintf("ocrfix-%s-*.png", base))
	if err != nil {
		return "", nil, NewOCRError(op, imagePath, err, "failed to create temporary file")
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			p.log.Warn().Err(err).Str("file", tmpPath).Msg("Failed to remove preprocessed image")
		}
	}

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, NewOCRError(op, imagePath, err, "failed to encode preprocessed image")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, NewOCRError(op, imagePath, err, "failed to write preprocessed image")
	}

	p.log.Debug().
		Str("image", imagePath).
		Str("prepared", tmpPath).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Image preprocessed")
	return tmpPath, cleanup, nil
}
