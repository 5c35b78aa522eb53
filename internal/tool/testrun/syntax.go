package testrun

import (
	"context"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/errutil"
	"github.com/Cyclone1070/reactagent/internal/tool/service/executor"
	"github.com/Cyclone1070/reactagent/internal/tool/shell"
)

// SyntaxRequest is the decoded argument set of check_syntax.
type SyntaxRequest struct {
	FilePath string `mapstructure:"file_path"`
}

// CheckSyntaxTool byte-compiles a Python file.
type CheckSyntaxTool struct {
	executor commandExecutor
	resolver pathResolver
	config   *config.Config
	root     string
}

// NewCheckSyntaxTool creates a CheckSyntaxTool with injected dependencies.
func NewCheckSyntaxTool(ex commandExecutor, resolver pathResolver, cfg *config.Config, root string) *CheckSyntaxTool {
	if ex == nil {
		panic("executor is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &CheckSyntaxTool{executor: ex, resolver: resolver, config: cfg, root: root}
}

func (t *CheckSyntaxTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "check_syntax",
		Category: tool.CategoryTesting,
		Params: []tool.Param{
			{Name: "file_path", Type: tool.TypeString, Required: true},
		},
		Doc: `Check Python syntax of a file.

Args:
    file_path (str): Path to Python file to check

Returns:
    "Syntax OK" if valid, the compiler error otherwise`,
	}
}

func (t *CheckSyntaxTool) Request() any { return &SyntaxRequest{} }

// Execute reports "Syntax OK" or the SyntaxError text. Other compiler
// failures, such as a missing file, are errors.
func (t *CheckSyntaxTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*SyntaxRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	if r.FilePath == "" {
		return "", tool.Errorf(tool.KindInvalidArguments, "file_path must not be empty")
	}
	rel, err := t.resolver.Rel(r.FilePath)
	if err != nil {
		return "", errutil.FromFS(err)
	}

	res, err := t.executor.Run(ctx, executor.Command{
		Argv: []string{t.config.Tools.Python, "-m", "py_compile", rel},
		Dir:  t.root,
	})
	if err == nil && res != nil && res.ExitCode != 0 && strings.Contains(res.Output, "SyntaxError") {
		return res.Output, nil
	}
	if _, err := shell.Interpret(res, err); err != nil {
		return "", err
	}
	return "Syntax OK", nil
}
