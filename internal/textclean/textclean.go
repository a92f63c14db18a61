// Package textclean normalizes whitespace in corrected OCR text.
package textclean

import "strings"

// PostProcess collapses every run of whitespace, line breaks included, to a
// single space. The remaining lines are trimmed and empty ones dropped.
// Applying it twice gives the same result.
func PostProcess(text string) string {
	text = strings.Join(strings.Fields(text), " ")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
