package correction

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Confidence bounds and the value used when the reply does not state one.
const (
	MinConfidence     = 0.0
	MaxConfidence     = 10.0
	DefaultConfidence = 5.0
)

// Method labels for results that did not come from the remote service.
const (
	FallbackMethod = "Original Text (API Failed)"
	NoTextMethod   = "No text to correct"
)

// Correction is a single fix reported by the language model.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// Result is the outcome of one correction attempt. Correct always produces one,
// falling back to the input text when the remote service fails.
type Result struct {
	Success       bool         `json:"success"`
	CorrectedText string       `json:"corrected_text"`
	Corrections   []Correction `json:"corrections"`
	Confidence    float64      `json:"confidence"`
	Method        string       `json:"method"`

	// Err is the failure that caused a fallback, nil otherwise.
	Err error `json:"-"`
}

// Fallback returns the result used when correction is not possible: the
// original text, no corrections and zero confidence.
func Fallback(text string) Result {
	return Result{
		Success:       false,
		CorrectedText: text,
		Corrections:   []Correction{},
		Confidence:    0,
		Method:        FallbackMethod,
	}
}

// Confidence accepts both JSON numbers and numeric strings such as "8".
// Strings that are not numbers decode to the default confidence.
type Confidence float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = DefaultConfidence
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		*c = DefaultConfidence
		return nil
	}
	*c = Confidence(v)
	return nil
}

// clamp limits v to [MinConfidence, MaxConfidence].
func clamp(v float64) float64 {
	switch {
	case v < MinConfidence:
		return MinConfidence
	case v > MaxConfidence:
		return MaxConfidence
	default:
		return v
	}
}
