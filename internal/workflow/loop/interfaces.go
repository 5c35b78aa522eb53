package loop

import (
	"context"

	"github.com/Cyclone1070/reactagent/internal/provider"
)

// llmProvider communicates with an LLM.
type llmProvider interface {
	// Generate sends messages to the LLM and returns its raw response text.
	Generate(ctx context.Context, messages []provider.Message) (string, error)
}

// FinishHandler turns the model's finish result into the run output.
type FinishHandler func(ctx context.Context, result string) (string, error)
