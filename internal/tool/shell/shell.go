package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/service/executor"
)

// ToolName is the name the model uses to call BashTool.
const ToolName = "run_bash_cmd"

// Request is the decoded argument set of run_bash_cmd.
type Request struct {
	Command string `mapstructure:"command"`
}

// BashTool runs a command line through bash in the workspace root.
type BashTool struct {
	executor commandExecutor
	config   *config.Config
	root     string
}

// NewBashTool creates a BashTool whose commands run in root.
func NewBashTool(ex commandExecutor, cfg *config.Config, root string) *BashTool {
	if ex == nil {
		panic("executor is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &BashTool{executor: ex, config: cfg, root: root}
}

func (t *BashTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name: ToolName,
		Params: []tool.Param{
			{Name: "command", Type: tool.TypeString, Required: true, Description: "the shell command to run"},
		},
		Doc: `Run the command in a bash shell in the repository root and return its
combined output. A non-zero exit code is reported as an error.

Args:
    command (str): the shell command to run

Returns:
    The output of running the shell command`,
	}
}

func (t *BashTool) Request() any { return &Request{} }

// Execute runs the command. A non-zero exit status becomes a
// KindCommandFailed error whose message is the command output.
func (t *BashTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*Request)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	if strings.TrimSpace(r.Command) == "" {
		return "", tool.Errorf(tool.KindInvalidArguments, "command must not be empty")
	}

	res, err := t.executor.Run(ctx, executor.Command{
		Argv:    []string{"bash", "-c", r.Command},
		Dir:     t.root,
		Timeout: time.Duration(t.config.Tools.DefaultShellTimeout) * time.Second,
	})
	return Interpret(res, err)
}

// Interpret maps an executor outcome onto the tool result contract shared
// by every command-running tool.
func Interpret(res *executor.Result, err error) (string, error) {
	output := ""
	if res != nil {
		output = res.Output
		if res.Truncated {
			output += "\n[output truncated]"
		}
	}

	switch {
	case err == nil && res != nil && res.ExitCode == 0:
		return output, nil
	case err == nil && res != nil:
		msg := output
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("command exited with status %d", res.ExitCode)
		}
		return "", &tool.Error{Kind: tool.KindCommandFailed, Message: msg}
	case errors.Is(err, executor.ErrTimeout):
		msg := "TimeoutError"
		if output != "" {
			msg = output + "\n" + msg
		}
		return "", &tool.Error{Kind: tool.KindTimeout, Message: msg, Cause: err, Hint: "Use a narrower command or run it in the background."}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "", err
	default:
		return "", tool.Wrap(tool.KindInternal, err, "")
	}
}
