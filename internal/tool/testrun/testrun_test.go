package testrun

import (
	"context"
	"errors"
	"testing"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/service/executor"
	"github.com/Cyclone1070/reactagent/internal/tool/service/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExecutor struct {
	RunFunc func(ctx context.Context, cmd executor.Command) (*executor.Result, error)
	calls   []executor.Command
}

func (m *mockExecutor) Run(ctx context.Context, cmd executor.Command) (*executor.Result, error) {
	m.calls = append(m.calls, cmd)
	return m.RunFunc(ctx, cmd)
}

type mockFinder struct {
	FindFunc func(ctx context.Context, pattern, fileType string) ([]string, error)
}

func (m *mockFinder) Find(ctx context.Context, pattern, fileType string) ([]string, error) {
	return m.FindFunc(ctx, pattern, fileType)
}

func output(out string, code int) func(context.Context, executor.Command) (*executor.Result, error) {
	return func(context.Context, executor.Command) (*executor.Result, error) {
		return &executor.Result{Output: out, ExitCode: code}, nil
	}
}

func TestRunTest_Argv(t *testing.T) {
	rt := NewRunTestTool(&mockExecutor{}, path.NewResolver("/work"), config.DefaultConfig(), "/work")

	tests := []struct {
		name string
		req  RunTestRequest
		want []string
	}{
		{"everything", RunTestRequest{}, []string{"python", "-m", "pytest", "-q", "."}},
		{"path", RunTestRequest{TestPath: "tests/test_a.py", TestName: "ignored"}, []string{"python", "-m", "pytest", "-q", "tests/test_a.py"}},
		{"name", RunTestRequest{TestName: "test_x", Verbose: true}, []string{"python", "-m", "pytest", "-q", "-v", "-k", "test_x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rt.Argv(&tt.req))
		})
	}
}

func TestRunTest_FailingTestsAreOutput(t *testing.T) {
	m := &mockExecutor{RunFunc: output("1 failed, 1 passed", 1)}
	rt := NewRunTestTool(m, path.NewResolver("/work"), config.DefaultConfig(), "/work")

	out, err := rt.Execute(context.Background(), &RunTestRequest{TestPath: "tests/test_a.py::test_x"})
	require.NoError(t, err)
	assert.Equal(t, "1 failed, 1 passed", out)
	require.Len(t, m.calls, 1)
	assert.Equal(t, "/work", m.calls[0].Dir)
}

func TestRunTest_NothingCollectedIsFailure(t *testing.T) {
	m := &mockExecutor{RunFunc: output("1 deselected in 0.01s\nno tests ran", 5)}
	rt := NewRunTestTool(m, path.NewResolver("/work"), config.DefaultConfig(), "/work")

	out, err := rt.Execute(context.Background(), &RunTestRequest{TestName: "nomatch"})

	assert.Empty(t, out)
	var te *tool.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, tool.KindCommandFailed, te.Kind)
	assert.Contains(t, te.Message, "no tests ran")
	assert.NotEmpty(t, te.Hint)
}

func TestRunTest_Errors(t *testing.T) {
	timeout := &mockExecutor{RunFunc: func(context.Context, executor.Command) (*executor.Result, error) {
		return &executor.Result{Output: "..", TimedOut: true}, executor.ErrTimeout
	}}
	rt := NewRunTestTool(timeout, path.NewResolver("/work"), config.DefaultConfig(), "/work")
	_, err := rt.Execute(context.Background(), &RunTestRequest{})
	var te *tool.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, tool.KindTimeout, te.Kind)

	missing := &mockExecutor{RunFunc: func(context.Context, executor.Command) (*executor.Result, error) {
		return nil, &executor.CommandError{Cmd: "python", Stage: "start", Cause: errors.New("not found")}
	}}
	rt = NewRunTestTool(missing, path.NewResolver("/work"), config.DefaultConfig(), "/work")
	_, err = rt.Execute(context.Background(), &RunTestRequest{})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, tool.KindCommandFailed, te.Kind)
	assert.NotEmpty(t, te.Hint)

	_, err = rt.Execute(context.Background(), &RunTestRequest{TestPath: "../../etc"})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, tool.KindOutsideWorkspace, te.Kind)
}

func TestCheckSyntax(t *testing.T) {
	tests := []struct {
		name     string
		run      func(context.Context, executor.Command) (*executor.Result, error)
		want     string
		wantKind tool.ErrorKind
	}{
		{"valid", output("", 0), "Syntax OK", ""},
		{"syntax error", output("  File \"a.py\", line 1\nSyntaxError: invalid syntax", 1), "  File \"a.py\", line 1\nSyntaxError: invalid syntax", ""},
		{"missing file", output("No such file or directory", 1), "", tool.KindCommandFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockExecutor{RunFunc: tt.run}
			ct := NewCheckSyntaxTool(m, path.NewResolver("/work"), config.DefaultConfig(), "/work")

			out, err := ct.Execute(context.Background(), &SyntaxRequest{FilePath: "pkg/a.py"})
			if tt.wantKind != "" {
				var te *tool.Error
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.wantKind, te.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, []string{"python", "-m", "py_compile", "pkg/a.py"}, m.calls[0].Argv)
		})
	}
}

func TestAnalyzeFailure(t *testing.T) {
	out := `tests/test_misc.py:12: in test_helper
    assert helper() == 2
E   assert 1 == 2
FAILED tests/test_misc.py::test_helper - AssertionError
`
	got := AnalyzeFailure(out)
	assert.Equal(t, "File Location: tests/test_misc.py:12: in test_helper\n"+
		"Error Message: assert 1 == 2\n"+
		"Test Status: FAILED tests/test_misc.py::test_helper - AssertionError", got)

	assert.Equal(t, "Could not extract failure details. Full output:\nall good", AnalyzeFailure("all good"))
}

func TestAnalyzeFailureTool(t *testing.T) {
	var at AnalyzeFailureTool
	out, err := at.Execute(context.Background(), &AnalyzeRequest{TestOutput: "ValueError: bad"})
	require.NoError(t, err)
	assert.Equal(t, "Error Type: ValueError: bad", out)
}

func TestFindTestFile(t *testing.T) {
	finder := &mockFinder{FindFunc: func(_ context.Context, pattern, fileType string) ([]string, error) {
		assert.Equal(t, "f", fileType)
		if pattern == "test_*.py" {
			return []string{"./tests/test_parser.py", "./tests/test_docstrings.py"}, nil
		}
		return []string{"./pkg/util_test.py"}, nil
	}}
	ft := NewFindTestFileTool(finder)

	out, err := ft.Execute(context.Background(), &FindTestRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Test files found:\n./pkg/util_test.py\n./tests/test_docstrings.py\n./tests/test_parser.py", out)

	out, err = ft.Execute(context.Background(), &FindTestRequest{IssueDescription: "Inherited docstrings are lost for properties"})
	require.NoError(t, err)
	assert.Equal(t, "Potentially relevant test files:\n./tests/test_docstrings.py", out)
}

func TestFindTestFile_None(t *testing.T) {
	ft := NewFindTestFileTool(&mockFinder{FindFunc: func(context.Context, string, string) ([]string, error) {
		return nil, nil
	}})
	out, err := ft.Execute(context.Background(), &FindTestRequest{})
	require.NoError(t, err)
	assert.Equal(t, "No test files found", out)
}
