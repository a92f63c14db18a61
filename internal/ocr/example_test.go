package ocr_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ocrfix/internal/ocr"
)

// Example demonstrates basic text extraction with the tesseract binary.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	engine := ocr.NewTesseract(ocr.TesseractConfig{
		Languages: "ind+eng",
	})
	if err := engine.Available(ctx); err != nil {
		log.Fatalf("Tesseract is not installed: %v", err)
	}

	text, err := engine.Extract(ctx, "gambar/laporan.png", ocr.DefaultMode)
	if err != nil {
		log.Fatalf("Failed to extract text: %v", err)
	}

	fmt.Printf("Extracted text (%d characters):\n%s\n", len(text), text)
}

// ExampleDetector demonstrates picking a segmentation mode automatically.
func ExampleDetector() {
	ctx := context.Background()

	detector := ocr.NewDetector(ocr.NewTesseract(ocr.TesseractConfig{}))
	report, err := detector.Detect(ctx, "gambar/struk.jpg")
	if err != nil {
		log.Fatalf("Auto-detection was interrupted: %v", err)
	}

	for _, res := range report.Results {
		fmt.Printf("PSM %2d  score %.2f  words %3d  %s\n",
			res.Mode, res.QualityScore, res.WordCount, res.Preview)
	}
	fmt.Printf("Recommended: PSM %d (%s)\n", report.Recommended, report.Recommended.Name())
}

// ExampleOCRError demonstrates matching extraction errors.
func ExampleOCRError() {
	ctx := context.Background()
	engine := ocr.NewTesseract(ocr.TesseractConfig{})

	_, err := engine.Extract(ctx, "gambar/foto.webp", 11)
	switch {
	case err == nil:
		fmt.Println("ok")
	case errors.Is(err, ocr.ErrEngineUnavailable):
		log.Printf("Install tesseract-ocr and the ind/eng language data.")
	case errors.Is(err, ocr.ErrExtractionFailed):
		var ocrErr *ocr.OCRError
		if errors.As(err, &ocrErr) {
			log.Printf("Tesseract failed on %s: %s", ocrErr.Image, ocrErr.Details)
		}
	default:
		log.Printf("OCR failed: %v", err)
	}
}

// ExampleQualityScore shows the score of a typical document line.
func ExampleQualityScore() {
	fmt.Printf("%.1f\n", ocr.QualityScore("Laporan Keuangan 2024\nTotal: 1,500,000"))
	// Output: 7.1
}
