// Package openai adapts OpenAI-compatible chat endpoints to provider.Provider
// through gollm.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/provider"
	"github.com/teilomillet/gollm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// completer is the slice of gollm.LLM this package needs.
type completer interface {
	Complete(ctx context.Context, prompt *gollm.Prompt) (string, error)
}

type gollmCompleter struct {
	llm gollm.LLM
}

func (c gollmCompleter) Complete(ctx context.Context, prompt *gollm.Prompt) (string, error) {
	return c.llm.Generate(ctx, prompt)
}

// Options configures the backend.
type Options struct {
	Provider  string // gollm provider name, "openai" by default
	Model     string
	APIKey    string // empty lets gollm read the provider's environment variable
	MaxTokens int
}

// OpenAIProvider implements provider.Provider on top of gollm.
type OpenAIProvider struct {
	client    completer
	model     string
	stopToken string
	maxTokens int
}

// New builds a gollm-backed provider.
func New(opts Options, stopToken string) (*OpenAIProvider, error) {
	if opts.Provider == "" {
		opts.Provider = "openai"
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(opts.Provider),
		gollm.SetModel(opts.Model),
		gollm.SetMaxTokens(opts.MaxTokens),
		gollm.SetTemperature(0),
		gollm.SetMaxRetries(0), // retries live in provider/retry
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if opts.APIKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(opts.APIKey))
	}

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for provider %s: %w", opts.Provider, err)
	}

	return newWithCompleter(gollmCompleter{llm: llm}, opts.Model, stopToken, opts.MaxTokens), nil
}

func newWithCompleter(c completer, model, stopToken string, maxTokens int) *OpenAIProvider {
	return &OpenAIProvider{client: c, model: model, stopToken: stopToken, maxTokens: maxTokens}
}

// Model returns the active model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Generate flattens the conversation into a single gollm prompt and returns
// the completion truncated at the stop token.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []provider.Message) (string, error) {
	system, body := flatten(messages)

	promptOpts := []gollm.PromptOption{gollm.WithMaxLength(p.maxTokens)}
	if system != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(system, gollm.CacheTypeEphemeral))
	}

	text, err := p.client.Complete(ctx, gollm.NewPrompt(body, promptOpts...))
	if err != nil {
		return "", provider.Classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &provider.ProviderError{
			Code:      provider.ErrorCodeEmptyResponse,
			Message:   "model returned no text",
			Retryable: true,
		}
	}

	return provider.TruncateAtStop(text, p.stopToken), nil
}

// flatten joins system messages into a system prompt and renders the rest
// as a single transcript, labelling assistant turns.
func flatten(messages []provider.Message) (string, string) {
	var system []string
	var parts []string

	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleSystem:
			system = append(system, msg.Content)
		case provider.RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		default:
			if msg.Content != "" {
				parts = append(parts, msg.Content)
			}
		}
	}

	body := strings.Join(parts, "\n\n")
	if body == "" {
		body = "Hello"
	}
	return strings.TrimSpace(strings.Join(system, "\n")), body
}
