package correction

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// maxDetailLength bounds how much of a bad reply ends up in error details.
const maxDetailLength = 200

type reply struct {
	CorrectedText *string      `json:"corrected_text"`
	Corrections   []Correction `json:"corrections"`
	Confidence    *Confidence  `json:"confidence"`
}

// StripCodeFence removes a surrounding ```json or ``` markdown fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseReply decodes the model's JSON reply, which must be an object. A missing corrected_text falls
// back to original and a missing confidence to DefaultConfidence. The
// confidence is clamped to [0, 10]. Method is left for the caller to set.
func ParseReply(raw, original string) (Result, error) {
	const op = "ParseReply"

	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return Result{}, NewError(op, "", ErrEmptyReply, "")
	}

	if !strings.HasPrefix(cleaned, "{") {
		return Result{}, NewError(op, "", ErrMalformedReply, "reply is not a JSON object: "+truncate(cleaned))
	}

	var r reply
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return Result{}, NewError(op, "", ErrMalformedReply, truncate(cleaned)+": "+err.Error())
	}

	result := Result{
		Success:       true,
		CorrectedText: original,
		Corrections:   r.Corrections,
		Confidence:    DefaultConfidence,
	}
	if r.CorrectedText != nil {
		result.CorrectedText = *r.CorrectedText
	}
	if r.Confidence != nil {
		result.Confidence = clamp(float64(*r.Confidence))
	}
	if result.Corrections == nil {
		result.Corrections = []Correction{}
	}
	return result, nil
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDetailLength {
		return s
	}
	return string([]rune(s)[:maxDetailLength]) + "..."
}
