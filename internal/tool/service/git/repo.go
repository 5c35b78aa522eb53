package git

import (
	"context"
	"errors"
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotARepository is returned when the workspace is not inside a git
// repository.
var ErrNotARepository = errors.New("not a git repository")

// FileStatus is one entry of the short status listing.
type FileStatus struct {
	Path     string
	Staging  byte
	Worktree byte
}

// Short renders the entry like `git status --short`.
func (s FileStatus) Short() string {
	return fmt.Sprintf("%c%c %s", s.Staging, s.Worktree, s.Path)
}

// Repo wraps a go-git repository rooted at the workspace.
type Repo struct {
	repo *gogit.Repository
}

// Open opens the repository containing root.
func Open(root string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, root)
		}
		return nil, fmt.Errorf("open repository %s: %w", root, err)
	}
	return &Repo{repo: repo}, nil
}

// Status lists changed and untracked files sorted by path.
func (r *Repo) Status() ([]FileStatus, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	out := make([]FileStatus, 0, len(status))
	for path, s := range status {
		if s.Staging == gogit.Unmodified && s.Worktree == gogit.Unmodified {
			continue
		}
		out = append(out, FileStatus{Path: path, Staging: byte(s.Staging), Worktree: byte(s.Worktree)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// HasChanges reports whether the worktree differs from HEAD, counting
// untracked files.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	entries, err := r.Status()
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// StageAll is the equivalent of `git add -A`: every change reported by
// Status, deletions included, is staged. Ignored files stay out.
func (r *Repo) StageAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	for path, s := range status {
		switch s.Worktree {
		case gogit.Unmodified:
			continue
		case gogit.Deleted:
			if _, err := wt.Remove(path); err != nil {
				return fmt.Errorf("stage removal of %s: %w", path, err)
			}
		default:
			if _, err := wt.Add(path); err != nil {
				return fmt.Errorf("stage %s: %w", path, err)
			}
		}
	}
	return nil
}

// HeadContent returns the content of a workspace-relative file at HEAD.
// ok is false when there is no HEAD commit or the file is not in it.
func (r *Repo) HeadContent(rel string) (string, bool, error) {
	commit, err := r.headCommit()
	if err != nil || commit == nil {
		return "", false, err
	}
	file, err := commit.File(rel)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s at HEAD: %w", rel, err)
	}
	text, err := file.Contents()
	if err != nil {
		return "", false, fmt.Errorf("read %s at HEAD: %w", rel, err)
	}
	return text, true, nil
}

// HeadInfo describes the checked-out commit.
type HeadInfo struct {
	Branch  string // empty when detached or unborn
	Hash    string
	Message string
}

// Head returns HEAD details. An unborn branch yields a zero HeadInfo.
func (r *Repo) Head() (HeadInfo, error) {
	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return HeadInfo{}, nil
	}
	if err != nil {
		return HeadInfo{}, fmt.Errorf("head: %w", err)
	}
	info := HeadInfo{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	if commit, err := r.repo.CommitObject(ref.Hash()); err == nil {
		info.Message = commit.Message
	}
	return info, nil
}

func (r *Repo) headCommit() (*object.Commit, error) {
	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("head commit: %w", err)
	}
	return commit, nil
}
