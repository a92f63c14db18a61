package ocr

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"ocrfix/internal/logger"
)

// previewLength is the number of characters kept in ModeResult.Preview.
const previewLength = 50

// ModeResult is the outcome of running one candidate mode during auto-detection.
type ModeResult struct {
	Mode         Mode    `json:"psm"`
	Text         string  `json:"text"`
	WordCount    int     `json:"word_count"`
	QualityScore float64 `json:"quality_score"`
	Preview      string  `json:"text_preview"`
	Err          error   `json:"-"`
}

// DetectionReport collects the per-mode results of one auto-detection run.
type DetectionReport struct {
	// Results are in CandidateModes order.
	Results []ModeResult `json:"test_results"`

	// Recommended is the mode with the highest quality score.
	Recommended Mode `json:"recommended_psm"`

	// MostWords is the mode that produced the most words.
	MostWords Mode `json:"most_words_psm"`

	// BestScore is the quality score of Recommended.
	BestScore float64 `json:"best_quality_score"`
}

// Result returns the entry for mode m.
func (r *DetectionReport) Result(m Mode) (ModeResult, bool) {
	for _, res := range r.Results {
		if res.Mode == m {
			return res, true
		}
	}
	return ModeResult{}, false
}

// AllEmpty reports whether no candidate mode produced any words.
func (r *DetectionReport) AllEmpty() bool {
	for _, res := range r.Results {
		if res.WordCount > 0 {
			return false
		}
	}
	return true
}

// Detector tries every candidate mode on an image and recommends one.
type Detector struct {
	extractor Extractor
	score     func(string) float64
	modes     []Mode
	log       zerolog.Logger

	// OnMode, if set, is called before each candidate mode is tried.
	OnMode func(mode Mode, index, total int)
}

// NewDetector creates a Detector that scores with QualityScore.
func NewDetector(extractor Extractor) *Detector {
	return NewDetectorWithScorer(extractor, QualityScore)
}

// NewDetectorWithScorer creates a Detector with an explicit scoring function.
func NewDetectorWithScorer(extractor Extractor, score func(string) float64) *Detector {
	return &Detector{
		extractor: extractor,
		score:     score,
		modes:     CandidateModes(),
		log:       logger.WithComponent("ocr-detect"),
	}
}

// Detect runs every candidate mode on imagePath. A failing mode is recorded with
// a zero score and does not stop the scan. Only context cancellation returns an error.
func (d *Detector) Detect(ctx context.Context, imagePath string) (*DetectionReport, error) {
	report := &DetectionReport{
		Results:     make([]ModeResult, 0, len(d.modes)),
		Recommended: DefaultMode,
		MostWords:   DefaultMode,
	}

	for i, mode := range d.modes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.OnMode != nil {
			d.OnMode(mode, i+1, len(d.modes))
		}
		report.Results = append(report.Results, d.tryMode(ctx, imagePath, mode))
	}

	if report.AllEmpty() {
		d.log.Info().
			Str("image", imagePath).
			Msg("No candidate mode produced text, falling back to default mode")
		return report, nil
	}

	best, most := report.Results[0], report.Results[0]
	for _, res := range report.Results[1:] {
		if res.QualityScore > best.QualityScore {
			best = res
		}
		if res.WordCount > most.WordCount {
			most = res
		}
	}
	report.Recommended = best.Mode
	report.BestScore = best.QualityScore
	report.MostWords = most.Mode

	d.log.Info().
		Str("image", imagePath).
		Int("recommended_psm", int(report.Recommended)).
		Float64("best_score", report.BestScore).
		Int("most_words_psm", int(report.MostWords)).
		Msg("Auto-detection finished")
	return report, nil
}

func (d *Detector) tryMode(ctx context.Context, imagePath string, mode Mode) ModeResult {
	text, err := d.extractor.Extract(ctx, imagePath, mode)
	if err != nil {
		d.log.Debug().
			Err(err).
			Int("psm", int(mode)).
			Msg("Candidate mode failed")
		return ModeResult{
			Mode:    mode,
			Preview: fmt.Sprintf("Error: %v", err),
			Err:     WrapOCRError("Detect", imagePath, err, "psm "+mode.String()),
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ModeResult{Mode: mode, Preview: "No text detected"}
	}

	return ModeResult{
		Mode:         mode,
		Text:         text,
		WordCount:    len(strings.Fields(text)),
		QualityScore: d.score(text),
		Preview:      Preview(text),
	}
}

// Preview shortens text to its first 50 characters, adding "..." when cut.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLength]) + "..."
}
