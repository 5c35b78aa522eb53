package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/service/fs"
	"github.com/Cyclone1070/reactagent/internal/tool/service/git"
	"github.com/Cyclone1070/reactagent/internal/tool/service/path"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root     string
	repo     *git.Repo
	fs       *fs.OSFileSystem
	resolver *path.Resolver
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)

	r, err := gogit.PlainInit(root, false)
	require.NoError(t, err)
	write(t, root, "pkg/misc.py", "def helper():\n    return 1\n")
	write(t, root, "old.py", "gone = True\n")
	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	repo, err := git.Open(root)
	require.NoError(t, err)
	return fixture{root: root, repo: repo, fs: fs.NewOSFileSystem(1 << 20), resolver: path.NewResolver(root)}
}

func write(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func TestVerifyChanges(t *testing.T) {
	f := newFixture(t)
	vt := NewVerifyChangesTool(f.repo)

	out, err := vt.Execute(context.Background(), vt.Request())
	require.NoError(t, err)
	assert.Equal(t, NoChanges, out)

	write(t, f.root, "pkg/misc.py", "def helper():\n    return 2\n")
	out, err = vt.Execute(context.Background(), vt.Request())
	require.NoError(t, err)
	assert.Equal(t, " M pkg/misc.py", out)
}

func TestShowDiff(t *testing.T) {
	f := newFixture(t)
	st := NewShowDiffTool(f.repo, f.fs, f.resolver)
	ctx := context.Background()

	out, err := st.Execute(ctx, &ShowDiffRequest{FilePath: "pkg/misc.py"})
	require.NoError(t, err)
	assert.Equal(t, NoFileChanges, out)

	write(t, f.root, "pkg/misc.py", "def helper():\n    return 2\n")
	out, err = st.Execute(ctx, &ShowDiffRequest{FilePath: "pkg/misc.py"})
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/pkg/misc.py b/pkg/misc.py\n"+
		"--- a/pkg/misc.py\n"+
		"+++ b/pkg/misc.py\n"+
		"@@ -1,2 +1,2 @@\n"+
		" def helper():\n"+
		"-    return 1\n"+
		"+    return 2\n", out)

	_, err = st.Execute(ctx, &ShowDiffRequest{FilePath: "../outside.py"})
	var te *tool.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, tool.KindOutsideWorkspace, te.Kind)
}

func TestGitStatus(t *testing.T) {
	f := newFixture(t)
	gt := NewGitStatusTool(f.repo)

	out, err := gt.Execute(context.Background(), gt.Request())
	require.NoError(t, err)
	assert.Equal(t, "On branch master\nnothing to commit, working tree clean\n", out)

	write(t, f.root, "new.py", "x = 1\n")
	require.NoError(t, os.Remove(filepath.Join(f.root, "old.py")))
	out, err = gt.Execute(context.Background(), gt.Request())
	require.NoError(t, err)
	assert.Equal(t, "On branch master\n"+
		"Changes not staged for commit:\n\tdeleted:   old.py\n"+
		"Untracked files:\n\tnew.py\n", out)
}

func TestStageChangesAndPatch(t *testing.T) {
	f := newFixture(t)
	write(t, f.root, "pkg/misc.py", "def helper():\n    return 2\n")
	write(t, f.root, "new.py", "x = 1\n")
	require.NoError(t, os.Remove(filepath.Join(f.root, "old.py")))

	out, err := NewStageChangesTool(f.repo).Execute(context.Background(), &noArgs{})
	require.NoError(t, err)
	assert.Equal(t, "Staged changes:\nA  new.py\nD  old.py\nM  pkg/misc.py", out)

	patch, err := NewPatchGenerator(f.repo, f.fs, f.resolver).Patch(context.Background(), "done")
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/new.py b/new.py\n"+
		"new file mode 100644\n"+
		"--- /dev/null\n"+
		"+++ b/new.py\n"+
		"@@ -0,0 +1 @@\n"+
		"+x = 1\n"+
		"diff --git a/old.py b/old.py\n"+
		"deleted file mode 100644\n"+
		"--- a/old.py\n"+
		"+++ /dev/null\n"+
		"@@ -1 +0,0 @@\n"+
		"-gone = True\n"+
		"diff --git a/pkg/misc.py b/pkg/misc.py\n"+
		"--- a/pkg/misc.py\n"+
		"+++ b/pkg/misc.py\n"+
		"@@ -1,2 +1,2 @@\n"+
		" def helper():\n"+
		"-    return 1\n"+
		"+    return 2", patch)
}

func TestPatch_Clean(t *testing.T) {
	f := newFixture(t)
	patch, err := NewPatchGenerator(f.repo, f.fs, f.resolver).Patch(context.Background(), "done")
	require.NoError(t, err)
	assert.Empty(t, patch)
}

type brokenRepo struct {
	repository
}

func (brokenRepo) StageAll() error { return errors.New("index locked") }

func TestPatch_FailureYieldsEmpty(t *testing.T) {
	f := newFixture(t)
	patch, err := NewPatchGenerator(brokenRepo{f.repo}, f.fs, f.resolver).Patch(context.Background(), "done")
	require.NoError(t, err)
	assert.Empty(t, patch)
}

func TestRepoInfo(t *testing.T) {
	f := newFixture(t)

	out, err := NewRepoInfoTool(f.repo, "astropy", f.root).Execute(context.Background(), &noArgs{})
	require.NoError(t, err)
	assert.Contains(t, out, "Repository: astropy\nRoot directory: "+f.root+"\nBranch: master\nHEAD: ")

	out, err = NewRepoInfoTool(f.repo, "", f.root).Execute(context.Background(), &noArgs{})
	require.NoError(t, err)
	assert.Contains(t, out, "Repository: "+filepath.Base(f.root))
}
