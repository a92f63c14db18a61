// Package report renders processing results as plain-text files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"ocrfix/internal/logger"
	"ocrfix/pkg/models"
)

// Timestamp layouts used in reports and file names.
const (
	dateLayout     = "2006-01-02 15:04:05"
	fileTimeLayout = "20060102_150405"
)

const (
	titleRule   = 60
	sectionRule = 40
)

// Render formats result as a text report. The output depends only on its
// arguments; at is printed as the report date.
func Render(result *models.ProcessingResult, at time.Time) string {
	var b strings.Builder

	b.WriteString("=== OCR WITH LANGUAGE MODEL CORRECTION ===\n")
	b.WriteString(strings.Repeat("=", titleRule) + "\n\n")

	b.WriteString("INFORMATION:\n")
	fmt.Fprintf(&b, "Image file: %s\n", result.ImageName)
	fmt.Fprintf(&b, "Full path: %s\n", result.ImagePath)
	fmt.Fprintf(&b, "PSM mode: %d (%s)\n", result.Mode, orNA(result.ModeName))
	fmt.Fprintf(&b, "Correction method: %s\n", result.Method)
	fmt.Fprintf(&b, "Confidence: %s/10\n", FormatConfidence(result.Confidence))
	fmt.Fprintf(&b, "Date: %s\n\n", at.Format(dateLayout))

	b.WriteString("STATISTICS:\n")
	fmt.Fprintf(&b, "Raw words: %d\n", result.Stats.RawWords)
	fmt.Fprintf(&b, "Final words: %d\n", result.Stats.FinalWords)
	fmt.Fprintf(&b, "Corrections: %d\n", result.Stats.CorrectionsCount)
	if result.Warning != "" {
		fmt.Fprintf(&b, "Warning: %s\n", result.Warning)
	}
	b.WriteString("\n")

	if len(result.Corrections) > 0 {
		section(&b, "CORRECTIONS")
		for _, c := range result.Corrections {
			b.WriteString(FormatCorrection(c) + "\n")
		}
		b.WriteString("\n")
	}

	section(&b, "RAW TEXT (OCR)")
	b.WriteString(result.RawText + "\n\n")

	section(&b, "CORRECTED TEXT")
	b.WriteString(result.CorrectedText + "\n\n")

	section(&b, "FINAL TEXT (POST-PROCESSED)")
	b.WriteString(result.FinalText + "\n")

	return b.String()
}

// FormatCorrection renders a correction as 'original' → 'corrected' (reason).
func FormatCorrection(c models.Correction) string {
	return fmt.Sprintf("'%s' → '%s' (%s)", c.Original, c.Corrected, c.Reason)
}

// FormatConfidence prints whole numbers without a fractional part.
func FormatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func section(b *strings.Builder, title string) {
	b.WriteString(title + ":\n")
	b.WriteString(strings.Repeat("-", sectionRule) + "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Writer saves reports to a directory.
type Writer struct {
	// Dir receives reports saved without an explicit file name.
	Dir string

	// Now returns the report timestamp; defaults to time.Now.
	Now func() time.Time

	log zerolog.Logger
}

// NewWriter creates a Writer for dir. An empty dir means the working directory.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{
		Dir: dir,
		Now: time.Now,
		log: logger.WithComponent("report"),
	}
}

// DefaultFileName returns ocr_result_<image base>_<YYYYMMDD_HHMMSS>.txt.
func DefaultFileName(imageName string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(imageName), filepath.Ext(imageName))
	return fmt.Sprintf("ocr_result_%s_%s.txt", base, at.Format(fileTimeLayout))
}

// Save writes the report for result and returns the path written. An empty
// outputFile places the report in w.Dir under DefaultFileName.
func (w *Writer) Save(result *models.ProcessingResult, outputFile string) (string, error) {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	at := now()

	path := outputFile
	if path == "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", w.Dir, err)
		}
		path = filepath.Join(w.Dir, DefaultFileName(result.ImageName, at))
	}

	content := Render(result, at)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		w.log.Error().
			Err(err).
			Str("output_file", path).
			Msg("Failed to write report")
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	w.log.Info().
		Str("output_file", path).
		Int("bytes", len(content)).
		Msg("Report written")
	return path, nil
}
