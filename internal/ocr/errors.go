package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrEngineUnavailable is returned when the OCR engine cannot be started,
	// for example because the tesseract binary is not on PATH.
	ErrEngineUnavailable = errors.New("OCR engine is not available")

	// ErrExtractionFailed is returned when the engine ran but did not produce text,
	// typically a non-zero exit status.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrInvalidMode is returned for a segmentation mode outside 0..13.
	ErrInvalidMode = errors.New("invalid page segmentation mode")

	// ErrEngineNotCompiled is returned by the in-process engine when the binary
	// was built without the gosseract build tag.
	ErrEngineNotCompiled = errors.New("in-process OCR engine not compiled in; rebuild with -tags gosseract")

	// ErrMissingCredentials is returned when no Google Cloud credentials are found.
	ErrMissingCredentials = errors.New("google cloud credentials not found")
)

// OCRError wraps errors with additional context about the OCR failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Extract", "Available").
	Op string

	// Image is the image being processed, if any.
	Image string

	// Err is the underlying error.
	Err error

	// Details provides additional context, such as the engine's stderr.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	msg := fmt.Sprintf("ocr: %s failed", e.Op)
	if e.Image != "" {
		msg += fmt.Sprintf(" for %s", e.Image)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %v", msg, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// NewOCRError creates a new OCRError for op on image.
func NewOCRError(op, image string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Image:   image,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op, image string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewOCRError(op, image, err, details)
}
