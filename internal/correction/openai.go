package correction

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the chat model used when none is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIConfig configures OpenAIGenerator.
type OpenAIConfig struct {
	APIKey string
	Model  string

	// BaseURL points at any OpenAI-compatible endpoint, e.g. "http://localhost:11434/v1".
	BaseURL string

	HTTPClient *http.Client
}

// OpenAIGenerator implements Generator with an OpenAI-compatible chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a chat completion client.
func NewOpenAIGenerator(config OpenAIConfig) *OpenAIGenerator {
	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
	}
}

// Provider implements Generator.
func (g *OpenAIGenerator) Provider() string {
	return "openai"
}

// Method implements Generator.
func (g *OpenAIGenerator) Method() string {
	return "OpenAI (" + g.model + ")"
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "Generate"

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: Temperature,
		TopP:        TopP,
		MaxTokens:   MaxOutputTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", NewError(op, g.Provider(), fmt.Errorf("%w: %w", ErrRequestFailed, err), "")
	}
	if len(resp.Choices) == 0 {
		return "", NewError(op, g.Provider(), ErrNoCandidates, "")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", NewError(op, g.Provider(), ErrEmptyReply, "")
	}
	return content, nil
}
