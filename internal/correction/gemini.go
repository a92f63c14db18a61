package correction

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-2.0-flash-exp"

// GeminiConfig configures GeminiGenerator.
type GeminiConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint; used by tests.
	BaseURL string

	// Timeout is applied to each HTTP request in addition to the context.
	Timeout time.Duration

	HTTPClient *http.Client
}

// GeminiGenerator implements Generator with the Google Gen AI SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiGenerator creates a Gemini API client for config.Model.
func NewGeminiGenerator(ctx context.Context, config GeminiConfig) (*GeminiGenerator, error) {
	const op = "NewGeminiGenerator"

	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: config.HTTPClient,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		cc.HTTPOptions.Timeout = genai.Ptr(config.Timeout)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, NewError(op, "gemini", err, "failed to create client")
	}

	return &GeminiGenerator{
		client: client,
		model:  config.Model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(Temperature)),
			TopK:            genai.Ptr(float32(TopK)),
			TopP:            genai.Ptr(float32(TopP)),
			MaxOutputTokens: MaxOutputTokens,
		},
	}, nil
}

// Provider implements Generator.
func (g *GeminiGenerator) Provider() string {
	return "gemini"
}

// Method implements Generator.
func (g *GeminiGenerator) Method() string {
	return "Gemini (" + g.model + ")"
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "Generate"

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", NewError(op, g.Provider(), fmt.Errorf("%w: %w", ErrRequestFailed, err), "")
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", NewError(op, g.Provider(), ErrNoCandidates, "")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", NewError(op, g.Provider(), ErrEmptyReply, "")
	}
	return text, nil
}
