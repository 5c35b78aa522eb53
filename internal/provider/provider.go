// Package provider defines the LLM client boundary used by the agent loop.
package provider

import "context"

// Role is the speaker of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one {role, content} entry handed to a backend.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider generates the next assistant turn for an ordered message list.
// Implementations handle their own stop-sequence logic and may block.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Modeler is implemented by providers that know which model they call.
type Modeler interface {
	Model() string
}

// ModelName returns p's model, or "unknown".
func ModelName(p Provider) string {
	if m, ok := p.(Modeler); ok {
		return m.Model()
	}
	return "unknown"
}
