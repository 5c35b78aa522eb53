package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/Cyclone1070/reactagent/internal/provider"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiProvider implements provider.Provider for Google Gemini.
type GeminiProvider struct {
	client          GeminiClient
	modelName       string
	stopToken       string
	maxOutputTokens int32
}

// New creates a new GeminiProvider with the specified client and model.
// stopToken is passed as a stop sequence and re-appended to every response.
func New(client GeminiClient, modelName, stopToken string, maxOutputTokens int) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		client:          client,
		modelName:       modelName,
		stopToken:       stopToken,
		maxOutputTokens: int32(maxOutputTokens),
	}
}

// NewFromEnv builds a provider backed by the real SDK using GEMINI_API_KEY.
func NewFromEnv(ctx context.Context, modelName, stopToken string, maxOutputTokens int) (*GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return New(NewRealGeminiClient(genaiClient), modelName, stopToken, maxOutputTokens), nil
}

// Model returns the active model name.
func (p *GeminiProvider) Model() string {
	return p.modelName
}

// Generate sends the conversation to Gemini and returns the response text.
func (p *GeminiProvider) Generate(ctx context.Context, messages []provider.Message) (string, error) {
	system, contents := toGeminiContents(messages)
	config := toGeminiConfig(system, p.stopToken, p.maxOutputTokens)

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	text, err := fromGeminiResponse(resp)
	if err != nil {
		return "", err
	}

	return provider.TruncateAtStop(text, p.stopToken), nil
}
