package models

import "time"

// ProcessingResult is the outcome of running one image through the pipeline.
type ProcessingResult struct {
	// Source image
	ImagePath string `json:"image_path"` // Path as given or resolved
	ImageName string `json:"image_name"` // Base name of ImagePath

	// Segmentation
	Mode         int    `json:"psm_mode"`        // Tesseract --psm value used for the final pass
	ModeName     string `json:"psm_description"` // Human-readable mode name
	AutoDetected bool   `json:"auto_detected"`   // Mode was chosen by auto-detection
	Engine       string `json:"engine"`          // OCR engine name

	// Text at each stage
	RawText       string `json:"raw_text"`       // OCR output
	CorrectedText string `json:"corrected_text"` // Language model output, or RawText on fallback
	FinalText     string `json:"final_text"`     // CorrectedText after whitespace cleanup

	// Correction outcome
	CorrectionSuccess bool         `json:"correction_success"`
	Corrections       []Correction `json:"corrections"`
	Confidence        float64      `json:"confidence"` // 0-10
	Method            string       `json:"method"`     // Correction method label

	Stats Stats `json:"statistics"`

	// Optional metadata
	Warning     string    `json:"warning,omitempty"`     // Degraded-success explanation
	ReportPath  string    `json:"report_path,omitempty"` // Where the text report was written
	ProcessedAt time.Time `json:"processed_at"`
}

// Correction is one typo fix applied to the OCR text.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// Stats summarizes a ProcessingResult.
type Stats struct {
	RawWords         int `json:"raw_words"`         // Words in RawText
	FinalWords       int `json:"final_words"`       // Words in FinalText
	CorrectionsCount int `json:"corrections_count"` // len(Corrections)
}
