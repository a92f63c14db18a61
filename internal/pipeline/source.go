package pipeline

import (
	"context"

	"ocrfix/internal/imagefile"
	"ocrfix/internal/ocr"
)

// DetectFunc runs mode auto-detection on the image currently being processed.
type DetectFunc func(ctx context.Context) (*ocr.DetectionReport, error)

// Selection is the segmentation mode chosen for an image. Detection is set
// when the mode came from auto-detection.
type Selection struct {
	Mode      ocr.Mode
	Detection *ocr.DetectionReport
}

// Source supplies the images of a run and the mode for each of them.
// Returning ErrCancelled from either method ends the run without error.
type Source interface {
	Images(ctx context.Context) ([]string, error)
	SelectMode(ctx context.Context, image string, detect DetectFunc) (Selection, error)
}

// BatchSource processes every image in a directory with one mode, or with
// an auto-detected mode per image.
type BatchSource struct {
	Dir        string
	Mode       ocr.Mode
	AutoDetect bool
}

// Images implements Source.
func (s *BatchSource) Images(ctx context.Context) ([]string, error) {
	return imagefile.Find(s.Dir)
}

// SelectMode implements Source.
func (s *BatchSource) SelectMode(ctx context.Context, image string, detect DetectFunc) (Selection, error) {
	return fixedOrDetected(ctx, s.Mode, s.AutoDetect, detect)
}

// SingleSource processes one image. Path may be a bare name that is looked up
// in Dir.
type SingleSource struct {
	Path       string
	Dir        string
	Mode       ocr.Mode
	AutoDetect bool
}

// Images implements Source. An unresolvable path is passed through so that
// the locate stage reports it.
func (s *SingleSource) Images(ctx context.Context) ([]string, error) {
	if resolved, err := imagefile.Resolve(s.Path, s.Dir); err == nil {
		return []string{resolved}, nil
	}
	return []string{s.Path}, nil
}

// SelectMode implements Source.
func (s *SingleSource) SelectMode(ctx context.Context, image string, detect DetectFunc) (Selection, error) {
	return fixedOrDetected(ctx, s.Mode, s.AutoDetect, detect)
}

func fixedOrDetected(ctx context.Context, mode ocr.Mode, auto bool, detect DetectFunc) (Selection, error) {
	if !auto {
		return Selection{Mode: mode}, nil
	}
	report, err := detect(ctx)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Mode: report.Recommended, Detection: report}, nil
}

// ModeChoice is the answer to a mode menu. Auto asks for auto-detection.
type ModeChoice struct {
	Mode ocr.Mode
	Auto bool
}

// Prompter asks the user for the inputs of an interactive run. Every method
// returns ErrCancelled when the user exits or input ends.
type Prompter interface {
	// ChooseImage picks one of images or returns a path typed by the user,
	// in which case manual is true.
	ChooseImage(ctx context.Context, images []string) (path string, manual bool, err error)

	// ChooseMode offers the mode menu with recommended as the default.
	ChooseMode(ctx context.Context, recommended ocr.Mode) (ModeChoice, error)

	// ConfirmMode asks whether to use the auto-detected mode.
	ConfirmMode(ctx context.Context, mode ocr.Mode, score float64) (bool, error)
}

// InteractiveSource asks the user for one image and its mode.
type InteractiveSource struct {
	Prompter Prompter
	Dir      string
}

// Images implements Source.
func (s *InteractiveSource) Images(ctx context.Context) ([]string, error) {
	images, err := imagefile.Find(s.Dir)
	if err != nil {
		return nil, err
	}

	path, manual, err := s.Prompter.ChooseImage(ctx, images)
	if err != nil {
		return nil, err
	}
	if manual {
		if resolved, err := imagefile.Resolve(path, s.Dir); err == nil {
			path = resolved
		}
	}
	return []string{path}, nil
}

// SelectMode implements Source. Declining the detected mode shows the menu
// again with the detected mode as the default.
func (s *InteractiveSource) SelectMode(ctx context.Context, image string, detect DetectFunc) (Selection, error) {
	recommended := ocr.DefaultMode
	var report *ocr.DetectionReport

	for {
		choice, err := s.Prompter.ChooseMode(ctx, recommended)
		if err != nil {
			return Selection{}, err
		}
		if !choice.Auto {
			return Selection{Mode: choice.Mode}, nil
		}

		if report == nil {
			if report, err = detect(ctx); err != nil {
				return Selection{}, err
			}
		}

		ok, err := s.Prompter.ConfirmMode(ctx, report.Recommended, report.BestScore)
		if err != nil {
			return Selection{}, err
		}
		if ok {
			return Selection{Mode: report.Recommended, Detection: report}, nil
		}
		recommended = report.Recommended
	}
}
