// Package view renders the command-line interface: menus, progress and
// result summaries.
package view

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"ocrfix/internal/imagefile"
	"ocrfix/internal/logger"
	"ocrfix/internal/ocr"
	"ocrfix/internal/pipeline"
	"ocrfix/internal/report"
	"ocrfix/pkg/models"
)

const (
	// AutoDetectChoice selects auto-detection in the mode menu.
	AutoDetectChoice = 99

	// ShowAllChoice lists every segmentation mode in the mode menu.
	ShowAllChoice = 98
)

const (
	nameWidth    = 25
	previewWidth = 60
	wideRule     = 60
	narrowRule   = 40
)

var (
	titleStyle   = color.New(color.Bold, color.FgHiWhite)
	headingStyle = color.New(color.Bold, color.FgHiCyan)
	successStyle = color.New(color.FgHiGreen)
	warnStyle    = color.New(color.FgHiYellow)
	errorStyle   = color.New(color.FgHiRed)
	hintStyle    = color.New(color.FgCyan)
	accentStyle  = color.New(color.Bold, color.FgHiMagenta)
)

// Console is the interactive terminal UI. It implements pipeline.Prompter and
// pipeline.Observer.
type Console struct {
	in  io.Reader
	out io.Writer

	// Detailed prints the full result summary for every processed image.
	Detailed bool

	// Method names the correction backend in progress messages.
	Method string

	lines chan string
	start sync.Once
	log   zerolog.Logger
}

var (
	_ pipeline.Prompter = (*Console)(nil)
	_ pipeline.Observer = (*Console)(nil)
)

// NewConsole creates a Console reading answers from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  in,
		out: out,
		log: logger.WithComponent("view"),
	}
}

// readLine returns the next input line. End of input is reported as
// pipeline.ErrCancelled.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.start.Do(func() {
		c.lines = make(chan string)
		go c.scan()
	})

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.out)
			return "", pipeline.ErrCancelled
		}
		return strings.TrimSpace(line), nil
	}
}

func (c *Console) scan() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		c.log.Debug().Err(err).Msg("Input closed with error")
	}
	close(c.lines)
}

func (c *Console) ask(ctx context.Context, label string) (string, error) {
	fmt.Fprint(c.out, label)
	return c.readLine(ctx)
}

// Welcome prints the banner shown at the start of an interactive session.
func (c *Console) Welcome(imageDir, method string) {
	titleStyle.Fprintf(c.out, "OCR pipeline with %s\n", method)
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule))
	fmt.Fprintf(c.out, "Images are searched in: %s\n\n", imageDir)
}

// Info prints a plain informational line.
func (c *Console) Info(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Error prints an error line with an optional hint.
func (c *Console) Error(message, hint string) {
	errorStyle.Fprintf(c.out, "Error: %s\n", message)
	if hint != "" {
		hintStyle.Fprintf(c.out, "Hint: %s\n", hint)
	}
}

// ChooseImage implements pipeline.Prompter.
func (c *Console) ChooseImage(ctx context.Context, images []string) (string, bool, error) {
	manual := len(images) + 1

	if len(images) == 0 {
		warnStyle.Fprintln(c.out, "No images found.")
		hintStyle.Fprintf(c.out, "Supported formats: %s\n", strings.Join(imagefile.SupportedExtensions(), ", "))
	} else {
		headingStyle.Fprintf(c.out, "Found %d images:\n", len(images))
		fmt.Fprintln(c.out, strings.Repeat("-", narrowRule))
		for i, path := range images {
			name := runewidth.FillRight(filepath.Base(path), nameWidth)
			fmt.Fprintf(c.out, "   %2d. %s (%s)\n", i+1, name, imagefile.HumanSize(path))
		}
	}
	fmt.Fprintf(c.out, "   %2d. Enter path manually\n", manual)
	fmt.Fprintln(c.out, "    0. Exit")

	for {
		answer, err := c.ask(ctx, fmt.Sprintf("\nSelect image (1-%d): ", manual))
		if err != nil {
			return "", false, err
		}
		if answer == "" {
			continue
		}

		choice, err := strconv.Atoi(answer)
		switch {
		case err != nil:
			errorStyle.Fprintln(c.out, "Invalid input. Enter a number.")
		case choice == 0:
			return "", false, pipeline.ErrCancelled
		case choice >= 1 && choice <= len(images):
			return images[choice-1], false, nil
		case choice == manual:
			path, err := c.askPath(ctx)
			return path, true, err
		default:
			errorStyle.Fprintf(c.out, "Invalid choice. Enter 1-%d or 0 to exit.\n", manual)
		}
	}
}

func (c *Console) askPath(ctx context.Context) (string, error) {
	for {
		answer, err := c.ask(ctx, "Image path: ")
		if err != nil {
			return "", err
		}
		if path := strings.Trim(answer, `"'`); path != "" {
			return path, nil
		}
		errorStyle.Fprintln(c.out, "Path must not be empty.")
	}
}

// ChooseMode implements pipeline.Prompter.
func (c *Console) ChooseMode(ctx context.Context, recommended ocr.Mode) (pipeline.ModeChoice, error) {
	fmt.Fprintln(c.out)
	headingStyle.Fprintln(c.out, "SELECT PAGE SEGMENTATION MODE")
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule))
	fmt.Fprintln(c.out, "Common modes:")
	for _, m := range ocr.CandidateModes() {
		line := fmt.Sprintf("   %2d. %s - %s", m, runewidth.FillRight(m.Name(), nameWidth), m.Info().UseCase)
		if m == recommended {
			accentStyle.Fprintln(c.out, line+" (recommended)")
			continue
		}
		fmt.Fprintln(c.out, line)
	}

	fmt.Fprintln(c.out, "\nAutomatic detection:")
	fmt.Fprintf(c.out, "   %d. Auto-detect the best mode (tries every common mode)\n", AutoDetectChoice)
	fmt.Fprintf(c.out, "   %d. Show all modes\n", ShowAllChoice)
	hintStyle.Fprintf(c.out, "\n   PSM %d: default for structured documents\n", ocr.DefaultMode)
	hintStyle.Fprintln(c.out, "   PSM 11: captures the most words")
	hintStyle.Fprintln(c.out, "   PSM 3: Tesseract default")

	for {
		answer, err := c.ask(ctx, fmt.Sprintf("\nSelect mode (default: %d): ", recommended))
		if err != nil {
			return pipeline.ModeChoice{}, err
		}
		if answer == "" {
			return pipeline.ModeChoice{Mode: recommended}, nil
		}

		choice, err := strconv.Atoi(answer)
		switch {
		case err != nil:
			errorStyle.Fprintln(c.out, "Invalid input. Enter a number.")
		case choice == AutoDetectChoice:
			return pipeline.ModeChoice{Auto: true}, nil
		case choice == ShowAllChoice:
			c.ShowModes()
		case ocr.Mode(choice).Valid():
			return pipeline.ModeChoice{Mode: ocr.Mode(choice)}, nil
		default:
			errorStyle.Fprintf(c.out, "PSM %d is not valid. Choose %d-%d, %d or %d.\n",
				choice, ocr.MinMode, ocr.MaxMode, ShowAllChoice, AutoDetectChoice)
		}
	}
}

// ConfirmMode implements pipeline.Prompter.
func (c *Console) ConfirmMode(ctx context.Context, mode ocr.Mode, score float64) (bool, error) {
	accentStyle.Fprintf(c.out, "\nAuto-detection recommends PSM %d (%s)\n", mode, mode.Name())
	fmt.Fprintf(c.out, "   Quality score: %.1f/10\n", score)

	answer, err := c.ask(ctx, "Use this recommendation? (y/n, default: y): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true, nil
	}
	return false, nil
}

// ShowModes lists every segmentation mode.
func (c *Console) ShowModes() {
	fmt.Fprintln(c.out)
	headingStyle.Fprintln(c.out, "ALL PAGE SEGMENTATION MODES")
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule+20))
	for _, m := range ocr.Modes() {
		fmt.Fprintf(c.out, "%2d. %s - %s\n", m, runewidth.FillRight(m.Name(), nameWidth+5), m.Info().UseCase)
	}
}

// PrerequisiteChecked implements pipeline.Observer.
func (c *Console) PrerequisiteChecked(engine string, err error) {
	if err == nil {
		successStyle.Fprintf(c.out, "OCR engine %s is available\n", engine)
		return
	}
	c.Error(fmt.Sprintf("OCR engine %s is not available: %v", engine, err),
		"Install Tesseract from https://github.com/tesseract-ocr/tesseract with the ind and eng language data")
}

// ImageStarted implements pipeline.Observer.
func (c *Console) ImageStarted(index, total int, image string) {
	if total > 1 {
		titleStyle.Fprintf(c.out, "\n[%d/%d] %s\n", index, total, filepath.Base(image))
	}
}

// StageStarted implements pipeline.Observer.
func (c *Console) StageStarted(stage pipeline.Stage, image string) {
	switch stage {
	case pipeline.StageAutoDetect:
		fmt.Fprintln(c.out, "Auto-detecting the best segmentation mode...")
	case pipeline.StageExtract:
		fmt.Fprintf(c.out, "Extracting text from %s...\n", filepath.Base(image))
	case pipeline.StageCorrect:
		method := c.Method
		if method == "" {
			method = "the language model"
		}
		fmt.Fprintf(c.out, "Correcting typos with %s...\n", method)
	case pipeline.StagePostProcess:
		fmt.Fprintln(c.out, "Post-processing text...")
	case pipeline.StageSave:
		fmt.Fprintln(c.out, "Saving result...")
	}
}

// DetectProgress implements pipeline.Observer.
func (c *Console) DetectProgress(mode ocr.Mode, index, total int) {
	fmt.Fprintf(c.out, "Testing PSM %d... (%d/%d)\n", mode, index, total)
}

// DetectionDone implements pipeline.Observer.
func (c *Console) DetectionDone(image string, rep *ocr.DetectionReport) {
	c.ShowDetection(rep)
}

// ShowDetection prints the per-mode table of an auto-detection run.
func (c *Console) ShowDetection(rep *ocr.DetectionReport) {
	fmt.Fprintln(c.out)
	headingStyle.Fprintln(c.out, "AUTO-DETECTION RESULTS")
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule))
	for _, res := range rep.Results {
		preview := strings.ReplaceAll(res.Preview, "\n", " ")
		preview = runewidth.Truncate(preview, previewWidth, "...")
		fmt.Fprintf(c.out, "PSM %2d: Quality %4.1f | Words %3d | %s\n",
			res.Mode, res.QualityScore, res.WordCount, preview)
	}
	if rep.AllEmpty() {
		warnStyle.Fprintf(c.out, "\nNo mode produced text, using PSM %d\n", rep.Recommended)
		return
	}
	accentStyle.Fprintf(c.out, "\nRecommended: PSM %d (quality %.1f)\n", rep.Recommended, rep.BestScore)
	fmt.Fprintf(c.out, "Most words: PSM %d\n", rep.MostWords)
}

// Warning implements pipeline.Observer.
func (c *Console) Warning(image, message string) {
	warnStyle.Fprintf(c.out, "Warning: %s\n", message)
}

// ImageDone implements pipeline.Observer.
func (c *Console) ImageDone(result *models.ProcessingResult) {
	if c.Detailed {
		c.ShowResult(result)
		fmt.Fprintf(c.out, "\nResult saved to: %s\n", result.ReportPath)
		return
	}
	successStyle.Fprintf(c.out, "Saved %s (PSM %d, %d words, %d corrections)\n",
		result.ReportPath, result.Mode, result.Stats.FinalWords, result.Stats.CorrectionsCount)
}

// ImageFailed implements pipeline.Observer.
func (c *Console) ImageFailed(err *pipeline.StageError) {
	c.Error(err.Error(), "")
}

// ShowResult prints the full summary of one processed image.
func (c *Console) ShowResult(result *models.ProcessingResult) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule))
	headingStyle.Fprintln(c.out, "CORRECTION RESULTS")
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule))

	titleStyle.Fprintln(c.out, "\nInformation:")
	fmt.Fprintf(c.out, "   Image: %s\n", result.ImageName)
	fmt.Fprintf(c.out, "   PSM mode: %d (%s)\n", result.Mode, result.ModeName)
	fmt.Fprintf(c.out, "   Method: %s\n", result.Method)
	fmt.Fprintf(c.out, "   Confidence: %s/10\n", report.FormatConfidence(result.Confidence))

	titleStyle.Fprintln(c.out, "\nStatistics:")
	fmt.Fprintf(c.out, "   Raw words: %d\n", result.Stats.RawWords)
	fmt.Fprintf(c.out, "   Final words: %d\n", result.Stats.FinalWords)
	fmt.Fprintf(c.out, "   Corrections: %d\n", result.Stats.CorrectionsCount)
	if result.Warning != "" {
		warnStyle.Fprintf(c.out, "   Warning: %s\n", result.Warning)
	}

	if len(result.Corrections) > 0 {
		titleStyle.Fprintln(c.out, "\nCorrections made:")
		for _, corr := range result.Corrections {
			fmt.Fprintf(c.out, "   %s\n", report.FormatCorrection(corr))
		}
	}

	c.showText("Raw text (OCR):", result.RawText)
	c.showText("Corrected text:", result.FinalText)
}

func (c *Console) showText(title, text string) {
	titleStyle.Fprintf(c.out, "\n%s\n", title)
	fmt.Fprintln(c.out, strings.Repeat("-", narrowRule))
	if text == "" {
		text = "(no text detected)"
	}
	fmt.Fprintln(c.out, text)
}

// ShowSummary prints the totals of a run.
func (c *Console) ShowSummary(summary *pipeline.Summary) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule))
	headingStyle.Fprintln(c.out, "RUN SUMMARY")
	fmt.Fprintln(c.out, strings.Repeat("=", wideRule))
	fmt.Fprintf(c.out, "   Images: %d\n", summary.Total)
	successStyle.Fprintf(c.out, "   Succeeded: %d\n", summary.Succeeded())
	if n := len(summary.Failures); n > 0 {
		errorStyle.Fprintf(c.out, "   Failed: %d\n", n)
		for _, f := range summary.Failures {
			fmt.Fprintf(c.out, "     - %s (%s): %v\n", filepath.Base(f.Image), f.Stage, f.Err)
		}
	}
	if summary.Cancelled {
		warnStyle.Fprintln(c.out, "   Run was cancelled before all images were processed")
	}
	fmt.Fprintf(c.out, "   Duration: %s\n", summary.Duration.Round(100*time.Millisecond))
}
