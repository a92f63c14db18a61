package pipeline

import (
	"ocrfix/internal/ocr"
	"ocrfix/pkg/models"
)

// Observer is notified as the orchestrator makes progress. The console view
// implements it; tests and --json output use NopObserver.
type Observer interface {
	PrerequisiteChecked(engine string, err error)
	ImageStarted(index, total int, image string)
	StageStarted(stage Stage, image string)
	DetectProgress(mode ocr.Mode, index, total int)
	DetectionDone(image string, report *ocr.DetectionReport)
	Warning(image, message string)
	ImageDone(result *models.ProcessingResult)
	ImageFailed(err *StageError)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) PrerequisiteChecked(string, error) {}
func (NopObserver) ImageStarted(int, int, string) {}
func (NopObserver) StageStarted(Stage, string) {}
func (NopObserver) DetectProgress(ocr.Mode, int, int) {}
func (NopObserver) DetectionDone(string, *ocr.DetectionReport) {}
func (NopObserver) Warning(string, string) {}
func (NopObserver) ImageDone(*models.ProcessingResult) {}
func (NopObserver) ImageFailed(*StageError) {}
