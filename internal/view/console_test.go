package view

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ocrfix/internal/ocr"
	"ocrfix/internal/pipeline"
	"ocrfix/pkg/models"
)

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	color.NoColor = true
	out := &bytes.Buffer{}
	return NewConsole(strings.NewReader(input), out), out
}

func TestChooseImage(t *testing.T) {
	images := []string{"/data/gambar/laporan.png", "/data/gambar/struk.jpg"}

	c, out := newTestConsole("\nabc\n7\n2\n")
	path, manual, err := c.ChooseImage(context.Background(), images)
	require.NoError(t, err)
	assert.Equal(t, "/data/gambar/struk.jpg", path)
	assert.False(t, manual)

	text := out.String()
	assert.Contains(t, text, "Found 2 images:")
	assert.Contains(t, text, " 1. laporan.png")
	assert.Contains(t, text, " 3. Enter path manually")
	assert.Contains(t, text, "0. Exit")
	assert.Contains(t, text, "Invalid input. Enter a number.")
	assert.Contains(t, text, "Invalid choice. Enter 1-3 or 0 to exit.")
}

func TestChooseImage_Manual(t *testing.T) {
	c, out := newTestConsole("1\n\n'scan kantor.png'\n")
	path, manual, err := c.ChooseImage(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, manual)
	assert.Equal(t, "scan kantor.png", path)
	assert.Contains(t, out.String(), "No images found.")
	assert.Contains(t, out.String(), "Path must not be empty.")
}

func TestChooseImage_Exit(t *testing.T) {
	c, _ := newTestConsole("0\n")
	_, _, err := c.ChooseImage(context.Background(), []string{"a.png"})
	assert.ErrorIs(t, err, pipeline.ErrCancelled)
}

func TestChooseImage_EndOfInput(t *testing.T) {
	c, _ := newTestConsole("")
	_, _, err := c.ChooseImage(context.Background(), []string{"a.png"})
	assert.ErrorIs(t, err, pipeline.ErrCancelled)
}

func TestChooseImage_ContextCancelled(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	color.NoColor = true
	c := NewConsole(r, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err = c.ChooseImage(ctx, []string{"a.png"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChooseMode(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		recommended ocr.Mode
		want        pipeline.ModeChoice
	}{
		{"default", "\n", ocr.DefaultMode, pipeline.ModeChoice{Mode: 6}},
		{"recommended default", "\n", 11, pipeline.ModeChoice{Mode: 11}},
		{"explicit", "4\n", 6, pipeline.ModeChoice{Mode: 4}},
		{"non candidate mode", "13\n", 6, pipeline.ModeChoice{Mode: 13}},
		{"auto", "99\n", 6, pipeline.ModeChoice{Auto: true}},
		{"invalid then valid", "14\nx\n3\n", 6, pipeline.ModeChoice{Mode: 3}},
		{"show all then default", "98\n\n", 6, pipeline.ModeChoice{Mode: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConsole(tt.input)
			got, err := c.ChooseMode(context.Background(), tt.recommended)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChooseMode_Output(t *testing.T) {
	c, out := newTestConsole("98\n14\n\n")
	_, err := c.ChooseMode(context.Background(), 11)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "(recommended)")
	assert.Contains(t, text, "Select mode (default: 11): ")
	assert.Contains(t, text, "ALL PAGE SEGMENTATION MODES")
	assert.Contains(t, text, "Raw line")
	assert.Contains(t, text, "PSM 14 is not valid. Choose 0-13, 98 or 99.")
}

func TestConfirmMode(t *testing.T) {
	for input, want := range map[string]bool{"\n": true, "y\n": true, "YES\n": true, "n\n": false, "nanti\n": false} {
		c, out := newTestConsole(input)
		ok, err := c.ConfirmMode(context.Background(), 4, 7.04)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "input %q", input)
		assert.Contains(t, out.String(), "Quality score: 7.0/10")
	}
}

func TestShowDetection(t *testing.T) {
	c, out := newTestConsole("")
	c.ShowDetection(&ocr.DetectionReport{
		Results: []ocr.ModeResult{
			{Mode: 3, WordCount: 4, QualityScore: 6.5, Preview: "Laporan\nKeuangan"},
			{Mode: 6, Preview: "No text detected"},
			{Mode: 11, WordCount: 80, QualityScore: 7.3, Preview: strings.Repeat("kata ", 20)},
		},
		Recommended: 11,
		MostWords:   11,
		BestScore:   7.3,
	})

	text := out.String()
	assert.Contains(t, text, "PSM  3: Quality  6.5 | Words   4 | Laporan Keuangan")
	assert.Contains(t, text, "PSM  6: Quality  0.0 | Words   0 | No text detected")
	assert.Contains(t, text, "Recommended: PSM 11 (quality 7.3)")
	assert.Contains(t, text, "Most words: PSM 11")
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "PSM 11") {
			assert.True(t, strings.HasSuffix(line, "..."))
		}
	}
}

func TestShowDetection_AllEmpty(t *testing.T) {
	c, out := newTestConsole("")
	c.ShowDetection(&ocr.DetectionReport{
		Results:     []ocr.ModeResult{{Mode: 3, Preview: "No text detected"}},
		Recommended: ocr.DefaultMode,
		MostWords:   ocr.DefaultMode,
	})
	assert.Contains(t, out.String(), "No mode produced text, using PSM 6")
}

func sampleResult() *models.ProcessingResult {
	return &models.ProcessingResult{
		ImageName:     "laporan.png",
		Mode:          6,
		ModeName:      "Single uniform block",
		RawText:       "Laporan Kerngi",
		FinalText:     "Laporan Kerugian",
		Method:        "Gemini (gemini-2.0-flash-exp)",
		Confidence:    8.5,
		Corrections:   []models.Correction{{Original: "Kerngi", Corrected: "Kerugian", Reason: "OCR typo"}},
		Stats:         models.Stats{RawWords: 2, FinalWords: 2, CorrectionsCount: 1},
		ReportPath:    "hasil/ocr_result_laporan_20240101_120000.txt",
		CorrectedText: "Laporan Kerugian",
	}
}

func TestImageDone_Detailed(t *testing.T) {
	c, out := newTestConsole("")
	c.Detailed = true
	c.ImageDone(sampleResult())

	text := out.String()
	assert.Contains(t, text, "PSM mode: 6 (Single uniform block)")
	assert.Contains(t, text, "Confidence: 8.5/10")
	assert.Contains(t, text, "'Kerngi' → 'Kerugian' (OCR typo)")
	assert.Contains(t, text, "Result saved to: hasil/ocr_result_laporan_20240101_120000.txt")
	assert.Less(t, strings.Index(text, "Raw text (OCR):"), strings.Index(text, "Corrected text:"))
}

func TestImageDone_Compact(t *testing.T) {
	c, out := newTestConsole("")
	c.ImageDone(sampleResult())
	assert.Equal(t, "Saved hasil/ocr_result_laporan_20240101_120000.txt (PSM 6, 2 words, 1 corrections)\n", out.String())
}

func TestShowResult_EmptyText(t *testing.T) {
	c, out := newTestConsole("")
	c.ShowResult(&models.ProcessingResult{ImageName: "blank.png", Warning: "Correction service unavailable, using original text"})
	assert.Equal(t, 2, strings.Count(out.String(), "(no text detected)"))
	assert.Contains(t, out.String(), "Warning: Correction service unavailable")
	assert.NotContains(t, out.String(), "Corrections made:")
}

func TestObserverMessages(t *testing.T) {
	c, out := newTestConsole("")
	c.Method = "OpenAI (gpt-4o-mini)"

	c.PrerequisiteChecked("tesseract", errors.New("not found"))
	c.ImageStarted(2, 3, filepath.Join("gambar", "struk.jpg"))
	c.StageStarted(pipeline.StageExtract, "gambar/struk.jpg")
	c.StageStarted(pipeline.StageCorrect, "gambar/struk.jpg")
	c.DetectProgress(11, 7, 8)
	c.Warning("struk.jpg", "No text detected in the image")
	c.ImageFailed(&pipeline.StageError{Stage: pipeline.StageSave, Image: "struk.jpg", Err: errors.New("disk full")})

	text := out.String()
	assert.Contains(t, text, "OCR engine tesseract is not available: not found")
	assert.Contains(t, text, "https://github.com/tesseract-ocr/tesseract")
	assert.Contains(t, text, "[2/3] struk.jpg")
	assert.Contains(t, text, "Extracting text from struk.jpg...")
	assert.Contains(t, text, "Correcting typos with OpenAI (gpt-4o-mini)...")
	assert.Contains(t, text, "Testing PSM 11... (7/8)")
	assert.Contains(t, text, "Warning: No text detected in the image")
	assert.Contains(t, text, "Error: pipeline: save failed for struk.jpg: disk full")
}

func TestShowSummary(t *testing.T) {
	c, out := newTestConsole("")
	c.ShowSummary(&pipeline.Summary{
		Total:     3,
		Results:   []*models.ProcessingResult{sampleResult()},
		Failures:  []*pipeline.StageError{{Stage: pipeline.StageLocate, Image: "/x/rusak.png", Err: errors.New("image file not found")}},
		Cancelled: true,
		Duration:  1234 * time.Millisecond,
	})

	text := out.String()
	assert.Contains(t, text, "Images: 3")
	assert.Contains(t, text, "Succeeded: 1")
	assert.Contains(t, text, "Failed: 1")
	assert.Contains(t, text, "rusak.png (locate): image file not found")
	assert.Contains(t, text, "cancelled")
	assert.Contains(t, text, "Duration: 1.2s")
}
