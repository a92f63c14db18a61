// Package pipeline drives images through OCR, correction, cleanup and report
// writing.
//
// Each image moves through the stages locate, select_mode (with optional
// auto_detect), extract, correct, postprocess and save. A failure in any stage
// is recorded as a *StageError for that image and the run continues with the
// next one. Only the engine prerequisite check, which runs once per run, can
// halt a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"ocrfix/internal/correction"
	"ocrfix/internal/imagefile"
	"ocrfix/internal/logger"
	"ocrfix/internal/ocr"
	"ocrfix/internal/textclean"
	"ocrfix/pkg/models"
)

// CorrectionFallbackWarning is attached to results whose correction failed.
const CorrectionFallbackWarning = "Correction service unavailable, using original text"

// EmptyTextWarning is reported when OCR produced no text.
const EmptyTextWarning = "No text detected in the image"

// Corrector fixes OCR typos. It never fails; see correction.Service.
type Corrector interface {
	Correct(ctx context.Context, text string) correction.Result
}

// ReportSaver persists a result and returns where it was written.
type ReportSaver interface {
	Save(result *models.ProcessingResult, outputFile string) (string, error)
}

// Preparer produces a temporary, OCR-friendly copy of an image.
type Preparer interface {
	Prepare(imagePath string) (string, func(), error)
}

// Options configures an Orchestrator. Extractor, Corrector and Saver are required.
type Options struct {
	Extractor ocr.Extractor
	Corrector Corrector
	Saver     ReportSaver

	// Preparer, if set, preprocesses every image once before detection and extraction.
	Preparer Preparer

	// Observer receives progress notifications; nil means NopObserver.
	Observer Observer

	// Score overrides ocr.QualityScore during auto-detection.
	Score func(string) float64

	// OutputFile forces the report path. Only meaningful for single-image runs.
	OutputFile string
}

// Orchestrator runs the OCR pipeline.
type Orchestrator struct {
	extractor  ocr.Extractor
	detector   *ocr.Detector
	corrector  Corrector
	saver      ReportSaver
	preparer   Preparer
	observer   Observer
	outputFile string
	runID      string
	log        zerolog.Logger
}

// Summary collects the outcome of a run.
type Summary struct {
	RunID     string                     `json:"run_id"`
	Total     int                        `json:"total"`
	Results   []*models.ProcessingResult `json:"results"`
	Failures  []*StageError              `json:"-"`
	Cancelled bool                       `json:"cancelled"`
	Duration  time.Duration              `json:"duration"`
}

// Succeeded returns the number of images that produced a report.
func (s *Summary) Succeeded() int {
	return len(s.Results)
}

// New creates an Orchestrator with a fresh run ID.
func New(opts Options) *Orchestrator {
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	score := opts.Score
	if score == nil {
		score = ocr.QualityScore
	}
	detector := ocr.NewDetectorWithScorer(opts.Extractor, score)
	detector.OnMode = observer.DetectProgress

	runID := uuid.NewString()
	return &Orchestrator{
		extractor:  opts.Extractor,
		detector:   detector,
		corrector:  opts.Corrector,
		saver:      opts.Saver,
		preparer:   opts.Preparer,
		observer:   observer,
		outputFile: opts.OutputFile,
		runID:      runID,
		log:        logger.WithRunID("pipeline", runID),
	}
}

// RunID identifies this orchestrator's run in logs and summaries.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Close releases the OCR engine if it holds a client connection.
func (o *Orchestrator) Close() error {
	if c, ok := o.extractor.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CheckPrerequisite verifies that the OCR engine can run.
func (o *Orchestrator) CheckPrerequisite(ctx context.Context) error {
	err := o.extractor.Available(ctx)
	o.observer.PrerequisiteChecked(o.extractor.Name(), err)
	if err != nil {
		o.log.Error().
			Err(err).
			Str("engine", o.extractor.Name()).
			Msg("OCR engine is not available")
		return stageError(StagePrerequisite, "", fmt.Errorf("%w: %w", ErrPrerequisite, err))
	}
	return nil
}

// Run processes every image src yields, one at a time. Per-image failures are
// collected in the summary. The returned error is non-nil only when the run
// could not start: the prerequisite check failed or src could not list images.
// Cancellation ends the run early with Summary.Cancelled set and no error.
func (o *Orchestrator) Run(ctx context.Context, src Source) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: o.runID}
	defer func() { summary.Duration = time.Since(start) }()

	if err := o.CheckPrerequisite(ctx); err != nil {
		return summary, err
	}

	images, err := src.Images(ctx)
	if err != nil {
		if isCancellation(ctx, err) {
			summary.Cancelled = true
			return summary, nil
		}
		return summary, stageError(StageLocate, "", err)
	}
	summary.Total = len(images)

	o.log.Info().
		Int("images", len(images)).
		Msg("Starting run")

	for i, image := range images {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
		o.observer.ImageStarted(i+1, len(images), image)

		result, err := o.Process(ctx, src, image)
		if err != nil {
			if isCancellation(ctx, err) {
				summary.Cancelled = true
				break
			}
			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				stageErr = stageError(StageSelectMode, image, err)
			}
			summary.Failures = append(summary.Failures, stageErr)
			o.observer.ImageFailed(stageErr)
			o.log.Warn().
				Err(stageErr.Err).
				Str("image", image).
				Str("stage", string(stageErr.Stage)).
				Msg("Image failed")
			continue
		}
		summary.Results = append(summary.Results, result)
	}

	o.log.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded()).
		Int("failed", len(summary.Failures)).
		Bool("cancelled", summary.Cancelled).
		Dur("duration", time.Since(start)).
		Msg("Run finished")
	return summary, nil
}

// ProcessImage runs one image through the pipeline with a fixed mode. It does
// not check prerequisites; call CheckPrerequisite first.
func (o *Orchestrator) ProcessImage(ctx context.Context, imagePath string, mode ocr.Mode) (*models.ProcessingResult, error) {
	if err := o.locate(imagePath); err != nil {
		return nil, err
	}
	prepared, cleanup := o.prepare(imagePath)
	defer cleanup()

	return o.process(ctx, imagePath, prepared, Selection{Mode: mode})
}

// Process runs one image through the pipeline, asking src for its mode. The
// returned error is a *StageError, or the cancellation cause when the user or
// the context stopped the run. It does not check prerequisites.
func (o *Orchestrator) Process(ctx context.Context, src Source, image string) (*models.ProcessingResult, error) {
	if err := o.locate(image); err != nil {
		return nil, err
	}
	prepared, cleanup := o.prepare(image)
	defer cleanup()

	o.observer.StageStarted(StageSelectMode, image)
	detect := func(ctx context.Context) (*ocr.DetectionReport, error) {
		o.observer.StageStarted(StageAutoDetect, image)
		report, err := o.detector.Detect(ctx, prepared)
		if err != nil {
			return nil, stageError(StageAutoDetect, image, err)
		}
		o.observer.DetectionDone(image, report)
		return report, nil
	}

	selection, err := src.SelectMode(ctx, image, detect)
	if err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) || isCancellation(ctx, err) {
			return nil, err
		}
		return nil, stageError(StageSelectMode, image, err)
	}
	if !selection.Mode.Valid() {
		return nil, stageError(StageSelectMode, image, fmt.Errorf("%w: %d", ocr.ErrInvalidMode, selection.Mode))
	}

	return o.process(ctx, image, prepared, selection)
}

func (o *Orchestrator) locate(image string) error {
	o.observer.StageStarted(StageLocate, image)
	if err := imagefile.Validate(image); err != nil {
		return stageError(StageLocate, image, err)
	}
	return nil
}

// prepare returns the path to run OCR on. Preprocessing failures fall back to
// the original image.
func (o *Orchestrator) prepare(image string) (string, func()) {
	if o.preparer == nil {
		return image, func() {}
	}
	prepared, cleanup, err := o.preparer.Prepare(image)
	if err != nil {
		o.log.Warn().
			Err(err).
			Str("image", image).
			Msg("Preprocessing failed, using original image")
		return image, func() {}
	}
	return prepared, cleanup
}

func (o *Orchestrator) process(ctx context.Context, image, prepared string, selection Selection) (*models.ProcessingResult, error) {
	mode := selection.Mode
	log := o.log.With().Str("image", image).Int("psm", int(mode)).Logger()

	o.observer.StageStarted(StageExtract, image)
	rawText := ocr.ExtractOrEmpty(ctx, o.extractor, prepared, mode)
	if err := ctx.Err(); err != nil {
		return nil, stageError(StageExtract, image, err)
	}
	if rawText == "" {
		log.Warn().Msg("No text detected")
		o.observer.Warning(image, EmptyTextWarning)
	}

	o.observer.StageStarted(StageCorrect, image)
	corrected := o.corrector.Correct(ctx, rawText)
	if err := ctx.Err(); err != nil {
		return nil, stageError(StageCorrect, image, err)
	}

	o.observer.StageStarted(StagePostProcess, image)
	finalText := textclean.PostProcess(corrected.CorrectedText)

	result := &models.ProcessingResult{
		ImagePath:         image,
		ImageName:         filepath.Base(image),
		Mode:              int(mode),
		ModeName:          mode.Name(),
		AutoDetected:      selection.Detection != nil,
		Engine:            o.extractor.Name(),
		RawText:           rawText,
		CorrectedText:     corrected.CorrectedText,
		FinalText:         finalText,
		CorrectionSuccess: corrected.Success,
		Corrections:       toModelCorrections(corrected.Corrections),
		Confidence:        corrected.Confidence,
		Method:            corrected.Method,
		Stats: models.Stats{
			RawWords:         textclean.WordCount(rawText),
			FinalWords:       textclean.WordCount(finalText),
			CorrectionsCount: len(corrected.Corrections),
		},
		ProcessedAt: time.Now(),
	}
	if !corrected.Success {
		result.Warning = CorrectionFallbackWarning
		o.observer.Warning(image, CorrectionFallbackWarning)
	} else if rawText == "" {
		result.Warning = EmptyTextWarning
	}

	o.observer.StageStarted(StageSave, image)
	path, err := o.saver.Save(result, o.outputFile)
	if err != nil {
		return nil, stageError(StageSave, image, err)
	}
	result.ReportPath = path

	log.Info().
		Int("raw_words", result.Stats.RawWords).
		Int("final_words", result.Stats.FinalWords).
		Int("corrections", result.Stats.CorrectionsCount).
		Bool("correction_success", result.CorrectionSuccess).
		Str("report", path).
		Msg("Image processed")
	o.observer.ImageDone(result)
	return result, nil
}

func toModelCorrections(in []correction.Correction) []models.Correction {
	out := make([]models.Correction, 0, len(in))
	for _, c := range in {
		out = append(out, models.Correction{
			Original:  c.Original,
			Corrected: c.Corrected,
			Reason:    c.Reason,
		})
	}
	return out
}

func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		ctx.Err() != nil
}
