package ocr

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is a Tesseract page segmentation mode (--psm).
type Mode int

// DefaultMode assumes a single uniform block of text, the best fit for
// structured documents such as reports and forms.
const DefaultMode Mode = 6

// MinMode and MaxMode bound the valid segmentation modes.
const (
	MinMode Mode = 0
	MaxMode Mode = 13
)

// ModeInfo describes a segmentation mode for menus and reports.
type ModeInfo struct {
	Name    string
	UseCase string
}

var modeTable = [...]ModeInfo{
	0:  {"OSD only", "Orientation and script detection only"},
	1:  {"Automatic page segmentation with OSD", "Automatic page segmentation with orientation detection"},
	2:  {"Automatic page segmentation", "Automatic page segmentation without OSD or OCR"},
	3:  {"Fully automatic", "Tesseract default, good for general documents"},
	4:  {"Single column", "Single column of text of variable sizes"},
	5:  {"Single block", "Single uniform block of vertically aligned text"},
	6:  {"Single uniform block", "Recommended for structured documents (reports, forms)"},
	7:  {"Single text line", "A single line of text (headers, captions)"},
	8:  {"Single word", "A single word (logos, labels)"},
	9:  {"Single word in circle", "A single word in a circle (stamps, seals)"},
	10: {"Single character", "A single character (captchas, digits)"},
	11: {"Sparse text", "Scattered text, capture as many words as possible"},
	12: {"Sparse text with OSD", "Scattered text with orientation detection"},
	13: {"Raw line", "Raw line, bypassing Tesseract-specific processing"},
}

// candidateModes are the modes tried by auto-detection, in the order they are
// tried. Orientation-only and single-character modes are left out.
var candidateModes = []Mode{3, 4, 5, 6, 7, 8, 11, 12}

// CandidateModes returns the auto-detection modes in iteration order.
func CandidateModes() []Mode {
	out := make([]Mode, len(candidateModes))
	copy(out, candidateModes)
	return out
}

// Modes returns all segmentation modes in ascending order.
func Modes() []Mode {
	out := make([]Mode, 0, len(modeTable))
	for m := MinMode; m <= MaxMode; m++ {
		out = append(out, m)
	}
	return out
}

// Valid reports whether m is a known segmentation mode.
func (m Mode) Valid() bool {
	return m >= MinMode && m <= MaxMode
}

// Info returns the name and use case of m. Unknown modes get a placeholder.
func (m Mode) Info() ModeInfo {
	if !m.Valid() {
		return ModeInfo{Name: "Unknown PSM", UseCase: "N/A"}
	}
	return modeTable[m]
}

// Name is shorthand for m.Info().Name.
func (m Mode) Name() string {
	return m.Info().Name
}

func (m Mode) String() string {
	return strconv.Itoa(int(m))
}

// ParseMode parses a decimal mode number and checks it is in range.
func ParseMode(s string) (Mode, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidMode, s)
	}
	m := Mode(n)
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %d (valid range %d-%d)", ErrInvalidMode, n, MinMode, MaxMode)
	}
	return m, nil
}
