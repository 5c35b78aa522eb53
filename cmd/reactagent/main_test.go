package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/provider"
	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written to by the logger and the printer goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Generate(ctx context.Context, _ []provider.Message) (string, error) {
	idx := p.calls
	p.calls++
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return p.responses[idx], nil
}

func testDeps(stdin string, llm provider.Provider) (Dependencies, *bytes.Buffer, *lockedBuffer) {
	stdout := &bytes.Buffer{}
	stderr := &lockedBuffer{}
	return Dependencies{
		Stdin:  strings.NewReader(stdin),
		Stdout: stdout,
		Stderr: stderr,
		LoadConfig: func(string) (*config.Config, error) {
			return config.DefaultConfig(), nil
		},
		ProviderFactory: func(context.Context, *config.Config) (provider.Provider, func() error, error) {
			return llm, func() error { return nil }, nil
		},
	}, stdout, stderr
}

func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	r, err := gogit.PlainInit(root, false)
	require.NoError(t, err)
	for rel, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(body), 0o644))
	}
	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return root
}

func toolNames(set *toolset) []string {
	names := make([]string, 0, len(set.Tools))
	for _, tl := range set.Tools {
		names = append(names, tl.Descriptor().Name)
	}
	return names
}

func TestCreateTools(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("plain directory has no git tools", func(t *testing.T) {
		set, err := createTools(cfg, t.TempDir(), "")
		require.NoError(t, err)
		assert.Nil(t, set.Repo)
		assert.Nil(t, set.Patch)
		names := toolNames(set)
		assert.Contains(t, names, "run_bash_cmd")
		assert.Contains(t, names, "replace_in_file")
		assert.Contains(t, names, "find_test_file")
		assert.NotContains(t, names, "show_diff")
	})

	t.Run("git repository adds git tools", func(t *testing.T) {
		root := initRepo(t, map[string]string{"app.py": "x = 1\n"})
		set, err := createTools(cfg, root, "demo")
		require.NoError(t, err)
		require.NotNil(t, set.Repo)
		require.NotNil(t, set.Patch)
		names := toolNames(set)
		for _, want := range []string{"show_diff", "verify_changes", "get_git_status", "stage_changes", "get_repo_info"} {
			assert.Contains(t, names, want)
		}
	})

	t.Run("missing workspace", func(t *testing.T) {
		_, err := createTools(cfg, filepath.Join(t.TempDir(), "nope"), "")
		assert.Error(t, err)
	})
}

func TestParseCommand(t *testing.T) {
	in := "I will look.\n" + protocol.BeginCall + "\nshow_file\n" + protocol.ArgSep +
		"\nfile_path\n" + protocol.ValueSep + "\napp.py\n" + protocol.EndCall + "\n"
	deps, stdout, _ := testDeps(in, nil)

	cmd := newRootCmd(deps)
	cmd.SetArgs([]string{"parse"})
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, `"name": "show_file"`)
	assert.Contains(t, out, `"thought": "I will look."`)
	assert.Contains(t, out, `"file_path": "app.py"`)
}

func TestParseCommandNoCall(t *testing.T) {
	deps, _, _ := testDeps("just prose", nil)
	cmd := newRootCmd(deps)
	cmd.SetArgs([]string{"parse"})
	assert.ErrorIs(t, cmd.Execute(), protocol.ErrNoCallFound)
}

func TestToolsCommand(t *testing.T) {
	deps, stdout, _ := testDeps("", nil)
	cmd := newRootCmd(deps)
	cmd.SetArgs([]string{"tools", "--workspace", t.TempDir()})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Function: finish(result: str)")
	assert.Contains(t, stdout.String(), "Function: run_bash_cmd(command: str)")
}

func TestInvalidLogLevel(t *testing.T) {
	deps, _, _ := testDeps("", nil)
	cmd := newRootCmd(deps)
	cmd.SetArgs([]string{"--log-level", "loud", "parse"})
	assert.Error(t, cmd.Execute())
}

func TestRunRequiresTask(t *testing.T) {
	deps, _, _ := testDeps("", &scriptedProvider{responses: []string{""}})
	cmd := newRootCmd(deps)
	cmd.SetArgs([]string{"run", "--workspace", t.TempDir()})
	assert.ErrorContains(t, cmd.Execute(), "task is required")
}

func TestRunProducesPatch(t *testing.T) {
	root := initRepo(t, map[string]string{"app.py": "x = 1\ny = 2\n"})
	edit := protocol.Format(protocol.ParsedCall{
		Thought:   "Fix the constant.",
		Name:      "replace_in_file",
		Arguments: protocol.NewArgs("file_path", "app.py", "from_line", "1", "to_line", "1", "content", "x = 42"),
	})
	finish := protocol.Format(protocol.ParsedCall{
		Thought:   "Done.",
		Name:      protocol.FinishTool,
		Arguments: protocol.NewArgs("result", "changed x"),
	})
	llm := &scriptedProvider{responses: []string{edit, finish}}
	deps, stdout, stderr := testDeps("", llm)

	cmd := newRootCmd(deps)
	cmd.SetArgs([]string{"run", "--workspace", root, "--task", "set x to 42", "--policy", "lenient", "--patch", "--no-color"})
	require.NoError(t, cmd.Execute(), stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "diff --git a/app.py b/app.py")
	assert.Contains(t, out, "-x = 1")
	assert.Contains(t, out, "+x = 42")
	assert.Equal(t, 2, llm.calls)
	assert.Contains(t, stderr.String(), "edit app.py:1-1")

	data, err := os.ReadFile(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 42\ny = 2\n", string(data))
}
