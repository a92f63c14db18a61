package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ocrfix/pkg/models"
)

var fixedTime = time.Date(2024, 8, 17, 9, 5, 3, 0, time.UTC)

func sampleResult() *models.ProcessingResult {
	return &models.ProcessingResult{
		ImagePath:     "gambar/laporan.png",
		ImageName:     "laporan.png",
		Mode:          6,
		ModeName:      "Single uniform block",
		RawText:       "Kerngi an  lnventaris",
		CorrectedText: "Kerugian  Inventaris",
		FinalText:     "Kerugian Inventaris",
		Corrections: []models.Correction{
			{Original: "Kerngi an", Corrected: "Kerugian", Reason: "spasi salah"},
			{Original: "lnventaris", Corrected: "Inventaris", Reason: "l terbaca sebagai I"},
		},
		Confidence:        9,
		Method:            "Gemini (gemini-2.0-flash-exp)",
		CorrectionSuccess: true,
		Stats:             models.Stats{RawWords: 4, FinalWords: 2, CorrectionsCount: 2},
	}
}

func TestRender(t *testing.T) {
	out := Render(sampleResult(), fixedTime)

	assert.True(t, strings.HasPrefix(out, "=== OCR WITH LANGUAGE MODEL CORRECTION ===\n"))
	assert.Contains(t, out, "Image file: laporan.png\n")
	assert.Contains(t, out, "Full path: gambar/laporan.png\n")
	assert.Contains(t, out, "PSM mode: 6 (Single uniform block)\n")
	assert.Contains(t, out, "Confidence: 9/10\n")
	assert.Contains(t, out, "Date: 2024-08-17 09:05:03\n")
	assert.Contains(t, out, "Final words: 2\n")
	assert.NotContains(t, out, "Warning:")

	first := strings.Index(out, "'Kerngi an' → 'Kerugian' (spasi salah)")
	second := strings.Index(out, "'lnventaris' → 'Inventaris' (l terbaca sebagai I)")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "corrections keep their order")

	raw := strings.Index(out, "RAW TEXT (OCR):")
	corrected := strings.Index(out, "CORRECTED TEXT:")
	final := strings.Index(out, "FINAL TEXT (POST-PROCESSED):")
	assert.Less(t, strings.Index(out, "CORRECTIONS:"), raw)
	assert.Less(t, raw, corrected)
	assert.Less(t, corrected, final)
	assert.True(t, strings.HasSuffix(out, "Kerugian Inventaris\n"))
}

func TestRender_IsDeterministic(t *testing.T) {
	assert.Equal(t, Render(sampleResult(), fixedTime), Render(sampleResult(), fixedTime))
}

func TestRender_FallbackResult(t *testing.T) {
	result := sampleResult()
	result.Corrections = nil
	result.Confidence = 0
	result.Method = "Original Text (API Failed)"
	result.Warning = "Correction service unavailable, using original text"

	out := Render(result, fixedTime)
	assert.NotContains(t, out, "CORRECTIONS:")
	assert.Contains(t, out, "Warning: Correction service unavailable, using original text\n")
	assert.Contains(t, out, "Confidence: 0/10\n")
}

func TestFormatConfidence(t *testing.T) {
	assert.Equal(t, "8", FormatConfidence(8))
	assert.Equal(t, "7.5", FormatConfidence(7.5))
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "ocr_result_laporan_20240817_090503.txt", DefaultFileName("laporan.png", fixedTime))
	assert.Equal(t, "ocr_result_scan.v2_20240817_090503.txt", DefaultFileName("dir/scan.v2.jpeg", fixedTime))
}

func TestWriter_SaveDefaultName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(dir)
	w.Now = func() time.Time { return fixedTime }

	path, err := w.Save(sampleResult(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ocr_result_laporan_20240817_090503.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Render(sampleResult(), fixedTime), string(data))
}

func TestWriter_SaveExplicitFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "hasil.txt")
	w := NewWriter("unused")

	path, err := w.Save(sampleResult(), target)
	require.NoError(t, err)
	assert.Equal(t, target, path)
	assert.FileExists(t, target)
	assert.NoDirExists(t, "unused")
}

func TestWriter_SaveError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing-dir", "hasil.txt")
	_, err := NewWriter("").Save(sampleResult(), target)
	assert.Error(t, err)
}
