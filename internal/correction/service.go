// Package correction sends OCR output to a hosted language model for typo
// correction and parses its JSON reply.
//
// Correction never fails from the caller's point of view: when the remote
// service is unreachable, slow, or replies with something unusable, the
// original text is returned unchanged with Success set to false.
package correction

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"ocrfix/internal/logger"
)

// DefaultTimeout bounds a single correction request.
const DefaultTimeout = 30 * time.Second

// Generation parameters shared by all backends.
const (
	Temperature     = 0.1
	TopK            = 40
	TopP            = 0.95
	MaxOutputTokens = 1024
)

// Generator sends a prompt to a language model and returns the raw reply text.
type Generator interface {
	// Provider identifies the backend in logs, e.g. "gemini".
	Provider() string

	// Method is the human readable label stored in results, e.g. "Gemini (gemini-2.0-flash-exp)".
	Method() string

	// Generate returns the text of the first candidate.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service corrects OCR text with a Generator.
type Service struct {
	generator Generator
	timeout   time.Duration
	log       zerolog.Logger
}

// NewService creates a correction service. A zero timeout uses DefaultTimeout.
func NewService(generator Generator, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		generator: generator,
		timeout:   timeout,
		log:       logger.WithComponent("correction"),
	}
}

// Method returns the label results carry on success.
func (s *Service) Method() string {
	return s.generator.Method()
}

// Correct asks the model to fix OCR typos in text. It does not return an
// error; failures produce Fallback(text) with Err set.
func (s *Service) Correct(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{
			Success:     true,
			Corrections: []Correction{},
			Method:      NoTextMethod,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Debug().
		Str("provider", s.generator.Provider()).
		Int("text_length", len(text)).
		Dur("timeout", s.timeout).
		Msg("Sending correction request")

	raw, err := s.generator.Generate(ctx, BuildPrompt(text))
	if err != nil {
		return s.fallback(text, err)
	}

	result, err := ParseReply(raw, text)
	if err != nil {
		var corrErr *Error
		if errors.As(err, &corrErr) {
			corrErr.Provider = s.generator.Provider()
		}
		return s.fallback(text, err)
	}
	result.Method = s.generator.Method()

	s.log.Info().
		Str("provider", s.generator.Provider()).
		Int("corrections", len(result.Corrections)).
		Float64("confidence", result.Confidence).
		Dur("duration", time.Since(start)).
		Msg("Text corrected")
	return result
}

func (s *Service) fallback(text string, err error) Result {
	s.log.Warn().
		Err(err).
		Str("provider", s.generator.Provider()).
		Msg("Correction failed, using original text")
	result := Fallback(text)
	result.Err = err
	return result
}
