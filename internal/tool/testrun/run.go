package testrun

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/service/executor"
	"github.com/Cyclone1070/reactagent/internal/tool/shell"
)

// RunTestToolName is the name of the pytest runner.
const RunTestToolName = "run_test"

// pytestNoTestsCollected is pytest's exit status when nothing was collected.
const pytestNoTestsCollected = 5

// RunTestRequest is the decoded argument set of run_test.
type RunTestRequest struct {
	TestPath string `mapstructure:"test_path"`
	TestName string `mapstructure:"test_name"`
	Verbose  bool   `mapstructure:"verbose"`
}

// RunTestTool runs pytest in the workspace root.
type RunTestTool struct {
	executor commandExecutor
	resolver pathResolver
	config   *config.Config
	root     string
}

// NewRunTestTool creates a RunTestTool with injected dependencies.
func NewRunTestTool(ex commandExecutor, resolver pathResolver, cfg *config.Config, root string) *RunTestTool {
	if ex == nil {
		panic("executor is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &RunTestTool{executor: ex, resolver: resolver, config: cfg, root: root}
}

func (t *RunTestTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     RunTestToolName,
		Category: tool.CategoryTesting,
		Params: []tool.Param{
			{Name: "test_path", Type: tool.TypeString},
			{Name: "test_name", Type: tool.TypeString},
			{Name: "verbose", Type: tool.TypeBoolean, Default: "False"},
		},
		Doc: `Run tests using pytest.

Args:
    test_path (str): Path to test file or directory (e.g., "tests/test_misc.py")
    test_name (str): Specific test function name (e.g., "test_inherit_docstrings")
    verbose (bool): Whether to show verbose output

Returns:
    Test output`,
	}
}

func (t *RunTestTool) Request() any { return &RunTestRequest{} }

// Argv builds the pytest invocation. test_path wins over test_name; with
// neither the whole workspace is collected.
func (t *RunTestTool) Argv(r *RunTestRequest) []string {
	argv := []string{t.config.Tools.Python, "-m", "pytest", "-q"}
	if r.Verbose {
		argv = append(argv, "-v")
	}
	switch {
	case r.TestPath != "":
		argv = append(argv, r.TestPath)
	case r.TestName != "":
		argv = append(argv, "-k", r.TestName)
	default:
		argv = append(argv, ".")
	}
	return argv
}

// Execute returns the pytest output whether or not tests failed; the
// failure is read from the output by the caller.
func (t *RunTestTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*RunTestRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	if r.TestPath != "" {
		// pytest node ids carry "::name" after the file
		file, _, _ := strings.Cut(r.TestPath, "::")
		if _, err := t.resolver.Abs(file); err != nil {
			return "", tool.Wrap(tool.KindOutsideWorkspace, err, "")
		}
	}

	res, err := t.executor.Run(ctx, executor.Command{
		Argv:    t.Argv(r),
		Dir:     t.root,
		Timeout: time.Duration(t.config.Tools.TestTimeout) * time.Second,
	})
	if err == nil && res != nil && res.ExitCode == pytestNoTestsCollected {
		msg := strings.TrimSpace(res.Output)
		if msg == "" {
			msg = "no tests ran"
		}
		return "", &tool.Error{Kind: tool.KindCommandFailed, Message: msg, Hint: "No tests matched. Check test_path or test_name with find_test_file."}
	}
	if err == nil && res != nil {
		out := res.Output
		if res.Truncated {
			out += "\n[output truncated]"
		}
		return out, nil
	}
	var ce *executor.CommandError
	if errors.As(err, &ce) {
		return "", &tool.Error{Kind: tool.KindCommandFailed, Message: err.Error(), Hint: "Is pytest installed? Try run_bash_cmd with `python -m pytest --version`.", Cause: err}
	}
	return shell.Interpret(res, err)
}
