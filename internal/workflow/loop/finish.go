package loop

import (
	"context"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
)

type finishRequest struct {
	Result string `mapstructure:"result"`
}

// finishTool is the mandatory terminal tool. It is dispatched by the loop
// only after the guard accepts.
type finishTool struct {
	handler FinishHandler
}

func (f *finishTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     protocol.FinishTool,
		Category: tool.CategoryGeneral,
		Params: []tool.Param{
			{Name: "result", Type: tool.TypeString, Required: true, Description: "summary of the fix"},
		},
		Doc: `Call this with the final result once the task is solved. Finishing is refused
until code was edited, tests were re-run after the last edit, and they pass.

Args:
    result (str): the result produced by the agent

Returns:
    The result, which becomes the output of the run.`,
	}
}

func (f *finishTool) Request() any { return &finishRequest{} }

func (f *finishTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*finishRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	if f.handler == nil {
		return r.Result, nil
	}
	return f.handler(ctx, r.Result)
}
