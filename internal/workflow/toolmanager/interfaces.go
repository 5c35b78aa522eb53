package toolmanager

import (
	"context"

	"github.com/Cyclone1070/reactagent/internal/tool"
)

// Tool is a single callable exposed to the model.
type Tool interface {
	// Descriptor returns the tool's declared signature. It must be stable.
	Descriptor() tool.Descriptor

	// Request returns a fresh pointer to the tool's request struct with
	// defaults filled in. Raw arguments are decoded into it by field tag
	// `mapstructure:"<param>"`.
	Request() any

	// Execute runs the tool with the decoded request. Failures should be
	// returned as *tool.Error so the loop can classify them.
	Execute(ctx context.Context, req any) (string, error)
}
