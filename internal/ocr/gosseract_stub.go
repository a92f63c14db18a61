//go:build !gosseract

package ocr

// NewGosseract returns ErrEngineNotCompiled. The in-process engine needs
// libtesseract headers and is only built with -tags gosseract.
func NewGosseract(languages string) (Extractor, error) {
	return nil, ErrEngineNotCompiled
}
