package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one committed file.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("app.py")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestRepo_CleanThenModified(t *testing.T) {
	dir := initRepo(t)
	r, err := Open(dir)
	require.NoError(t, err)

	changed, err := r.HasChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.py"), []byte("y = 1\n"), 0o644))

	changed, err = r.HasChanges(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	status, err := r.Status()
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, " M app.py", status[0].Short())
	assert.Equal(t, "?? new.py", status[1].Short())

	require.NoError(t, r.StageAll())
	status, err = r.Status()
	require.NoError(t, err)
	assert.Equal(t, "M  app.py", status[0].Short())
	assert.Equal(t, "A  new.py", status[1].Short())
}

func TestRepo_HeadContent(t *testing.T) {
	dir := initRepo(t)
	r, err := Open(dir)
	require.NoError(t, err)

	text, ok, err := r.HeadContent("app.py")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x = 1\n", text)

	_, ok, err = r.HeadContent("missing.py")
	require.NoError(t, err)
	assert.False(t, ok)

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, "master", head.Branch)
	assert.Len(t, head.Hash, 40)
	assert.Equal(t, "initial", head.Message)
}

func TestRepo_Unborn(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	r, err := Open(dir)
	require.NoError(t, err)

	_, ok, err := r.HeadContent("a.py")
	require.NoError(t, err)
	assert.False(t, ok)

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, HeadInfo{}, head)
}
