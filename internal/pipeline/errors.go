package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a step of the per-image state machine.
type Stage string

const (
	StageLocate       Stage = "locate"
	StagePrerequisite Stage = "check_prerequisite"
	StageSelectMode   Stage = "select_mode"
	StageAutoDetect   Stage = "auto_detect"
	StageExtract      Stage = "extract"
	StageCorrect      Stage = "correct"
	StagePostProcess  Stage = "postprocess"
	StageSave         Stage = "save"
)

var (
	// ErrPrerequisite is returned when the OCR engine is not usable. It halts the run.
	ErrPrerequisite = errors.New("OCR engine prerequisite check failed")

	// ErrCancelled is returned by sources when the user exits or input ends.
	ErrCancelled = errors.New("cancelled by user")
)

// StageError records which stage failed for which image.
type StageError struct {
	Stage Stage
	Image string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Image == "" {
		return fmt.Sprintf("pipeline: %s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("pipeline: %s failed for %s: %v", e.Stage, e.Image, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, image string, err error) *StageError {
	return &StageError{Stage: stage, Image: image, Err: err}
}
