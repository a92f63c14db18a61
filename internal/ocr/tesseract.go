package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"ocrfix/internal/logger"
)

// TesseractConfig configures the tesseract subprocess.
type TesseractConfig struct {
	BinaryPath string // defaults to "tesseract" on PATH
	Languages  string // e.g. "ind+eng"
	EngineMode *int   // --oem value; nil means DefaultEngineMode
}

// Tesseract implements Extractor by running the tesseract command line tool.
type Tesseract struct {
	config TesseractConfig
	log    zerolog.Logger
}

// NewTesseract creates a subprocess-based extractor. Empty fields take defaults.
func NewTesseract(config TesseractConfig) *Tesseract {
	if config.BinaryPath == "" {
		config.BinaryPath = "tesseract"
	}
	if config.Languages == "" {
		config.Languages = DefaultLanguages
	}
	if config.EngineMode == nil {
		oem := DefaultEngineMode
		config.EngineMode = &oem
	}
	return &Tesseract{
		config: config,
		log:    logger.WithComponent("ocr-tesseract"),
	}
}

// Name implements Extractor.
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Args returns the command line arguments used for one extraction.
func (t *Tesseract) Args(imagePath string, mode Mode) []string {
	return []string{
		imagePath, "stdout",
		"--oem", strconv.Itoa(*t.config.EngineMode),
		"--psm", mode.String(),
		"-l", t.config.Languages,
	}
}

// Available runs "tesseract --version" and requires it to succeed.
func (t *Tesseract) Available(ctx context.Context) error {
	const op = "Available"

	path, err := exec.LookPath(t.config.BinaryPath)
	if err != nil {
		return NewOCRError(op, "", ErrEngineUnavailable, fmt.Sprintf("%s not found in PATH", t.config.BinaryPath))
	}

	cmd := exec.CommandContext(ctx, path, "--version")
	if out, err := cmd.CombinedOutput(); err != nil {
		return NewOCRError(op, "", ErrEngineUnavailable, strings.TrimSpace(string(out)))
	}

	t.log.Debug().Str("binary", path).Msg("Tesseract is available")
	return nil
}

// Extract implements Extractor.
func (t *Tesseract) Extract(ctx context.Context, imagePath string, mode Mode) (string, error) {
	const op = "Extract"

	if !mode.Valid() {
		return "", NewOCRError(op, imagePath, ErrInvalidMode, mode.String())
	}

	args := t.Args(imagePath, mode)
	cmd := exec.CommandContext(ctx, t.config.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.log.Debug().
		Str("image", imagePath).
		Strs("args", args).
		Msg("Running tesseract")

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", NewOCRError(op, imagePath, ctxErr, "")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", NewOCRError(op, imagePath, ErrExtractionFailed,
				fmt.Sprintf("exit status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String())))
		}
		return "", NewOCRError(op, imagePath, fmt.Errorf("%w: %v", ErrEngineUnavailable, err), "")
	}

	text := strings.TrimSpace(stdout.String())
	t.log.Debug().
		Str("image", imagePath).
		Int("psm", int(mode)).
		Int("text_length", len(text)).
		Msg("Tesseract finished")
	return text, nil
}
