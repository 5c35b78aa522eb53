package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/provider"
	"google.golang.org/genai"
)

// toGeminiContents splits messages into a system instruction and chat contents.
// Multiple system messages are concatenated.
func toGeminiContents(messages []provider.Message) (*genai.Content, []*genai.Content) {
	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case provider.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			// Gemini rejects empty parts
			if msg.Content == "" {
				continue
			}
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(systemParts) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser), contents
}

// toGeminiConfig builds the request config.
func toGeminiConfig(system *genai.Content, stopToken string, maxOutputTokens int32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		SafetySettings:    defaultSafetySettings(),
		MaxOutputTokens:   maxOutputTokens,
	}
	if stopToken != "" {
		config.StopSequences = []string{stopToken}
	}
	return config
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// fromGeminiResponse extracts the text of the first candidate.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	}

	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
	}

	if sb.Len() == 0 {
		return "", &provider.ProviderError{
			Code:      provider.ErrorCodeEmptyResponse,
			Message:   fmt.Sprintf("candidate has no text (finish reason %s)", candidate.FinishReason),
			Retryable: true,
		}
	}

	return sb.String(), nil
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErrPtr):
		apiErr = *apiErrPtr
	case errors.As(err, &apiErr):
	default:
		return provider.Classify(err)
	}

	switch apiErr.Code {
	case 401, 403:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeAuth,
			Message:    "authentication failed",
			Underlying: err,
		}
	case 429:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeRateLimit,
			Message:    "rate limit exceeded",
			Underlying: err,
			Retryable:  true,
		}
	case 400:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
			Underlying: err,
		}
	case 500, 502, 503, 504:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeUnavailable,
			Message:    "service unavailable",
			Underlying: err,
			Retryable:  true,
		}
	default:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeNetwork,
			Message:    fmt.Sprintf("API error: %s", apiErr.Message),
			Underlying: err,
			Retryable:  true,
		}
	}
}
