package ocr

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQualityScore is the upper bound of QualityScore.
const MaxQualityScore = 10.0

// allowedPunctuation is not counted as noise by QualityScore.
const allowedPunctuation = " .,!?;:()[]{}"

// commonWords are frequent Indonesian and English function words. They are
// matched as case-insensitive substrings.
var commonWords = []string{
	"dan", "atau", "yang", "dengan", "untuk", "dari", "ke", "di", "pada", "dalam",
	"the", "and", "or", "of", "to", "in", "for", "with", "on", "at",
}

// QualityScore rates how text-like an OCR output looks, from 0 to 10.
// Empty text scores 0. The score is the sum of:
//   - words/10, at most 3
//   - 2 if there is a letter, 1 if there is a digit, 1 if there is whitespace
//   - 1 if the length is strictly between 10 and 1000 characters
//   - 1 if fewer than 10% of the characters are noise (not alphanumeric and
//     not common punctuation)
//   - common words found / 5, at most 1
func QualityScore(text string) float64 {
	if text == "" {
		return 0
	}

	score := 0.0

	if words := len(strings.Fields(text)); words > 0 {
		score += math.Min(float64(words)/10, 3)
	}

	var hasLetter, hasDigit, hasSpace bool
	noise := 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if unicode.IsSpace(r) {
			hasSpace = true
		}
		if !isAlnum(r) && !strings.ContainsRune(allowedPunctuation, r) {
			noise++
		}
	}
	if hasLetter {
		score += 2
	}
	if hasDigit {
		score += 1
	}
	if hasSpace {
		score += 1
	}

	length := utf8.RuneCountInString(text)
	if length > 10 && length < 1000 {
		score += 1
	}

	if float64(noise) < float64(length)*0.1 {
		score += 1
	}

	lower := strings.ToLower(text)
	found := 0
	for _, w := range commonWords {
		if strings.Contains(lower, w) {
			found++
		}
	}
	if found > 0 {
		score += math.Min(float64(found)/5, 1)
	}

	return math.Min(score, MaxQualityScore)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
