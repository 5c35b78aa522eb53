package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/service/git"
)

// NoChanges is reported by verify_changes on a clean worktree.
const NoChanges = "No changes detected"

type noArgs struct{}

// VerifyChangesTool lists changed files in short status form.
type VerifyChangesTool struct {
	repo repository
}

// NewVerifyChangesTool creates a VerifyChangesTool.
func NewVerifyChangesTool(repo repository) *VerifyChangesTool {
	if repo == nil {
		panic("repo is required")
	}
	return &VerifyChangesTool{repo: repo}
}

func (t *VerifyChangesTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "verify_changes",
		Category: tool.CategoryGit,
		Doc: `Verify that file changes exist.

Returns:
    Short status of modified files, or "No changes detected"`,
	}
}

func (t *VerifyChangesTool) Request() any { return &noArgs{} }

func (t *VerifyChangesTool) Execute(ctx context.Context, _ any) (string, error) {
	entries, err := t.repo.Status()
	if err != nil {
		return "", tool.Wrap(tool.KindCommandFailed, err, "")
	}
	if len(entries) == 0 {
		return NoChanges, nil
	}
	return shortStatus(entries), nil
}

// GitStatusTool reports the branch and the changed files.
type GitStatusTool struct {
	repo repository
}

// NewGitStatusTool creates a GitStatusTool.
func NewGitStatusTool(repo repository) *GitStatusTool {
	if repo == nil {
		panic("repo is required")
	}
	return &GitStatusTool{repo: repo}
}

func (t *GitStatusTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "get_git_status",
		Category: tool.CategoryGit,
		Doc: `Get detailed git status to help debug why changes aren't detected.

Returns:
    Full git status output`,
	}
}

func (t *GitStatusTool) Request() any { return &noArgs{} }

func (t *GitStatusTool) Execute(ctx context.Context, _ any) (string, error) {
	head, err := t.repo.Head()
	if err != nil {
		return "", tool.Wrap(tool.KindCommandFailed, err, "")
	}
	entries, err := t.repo.Status()
	if err != nil {
		return "", tool.Wrap(tool.KindCommandFailed, err, "")
	}

	var b strings.Builder
	switch {
	case head.Branch != "":
		fmt.Fprintf(&b, "On branch %s\n", head.Branch)
	case head.Hash != "":
		fmt.Fprintf(&b, "HEAD detached at %s\n", shortHash(head.Hash))
	default:
		b.WriteString("No commits yet\n")
	}

	var staged, unstaged, untracked []string
	for _, e := range entries {
		switch {
		case e.Staging == '?':
			untracked = append(untracked, e.Path)
			continue
		case e.Staging != ' ':
			staged = append(staged, fmt.Sprintf("%s:   %s", statusWord(e.Staging), e.Path))
		}
		if e.Worktree != ' ' {
			unstaged = append(unstaged, fmt.Sprintf("%s:   %s", statusWord(e.Worktree), e.Path))
		}
	}
	section(&b, "Changes to be committed:", staged)
	section(&b, "Changes not staged for commit:", unstaged)
	section(&b, "Untracked files:", untracked)
	if len(entries) == 0 {
		b.WriteString("nothing to commit, working tree clean\n")
	}
	return b.String(), nil
}

// StageChangesTool stages every change, like `git add -A`.
type StageChangesTool struct {
	repo repository
}

// NewStageChangesTool creates a StageChangesTool.
func NewStageChangesTool(repo repository) *StageChangesTool {
	if repo == nil {
		panic("repo is required")
	}
	return &StageChangesTool{repo: repo}
}

func (t *StageChangesTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "stage_changes",
		Category: tool.CategoryGit,
		Doc: `Stage all changes (git add -A).

Returns:
    Short status after staging`,
	}
}

func (t *StageChangesTool) Request() any { return &noArgs{} }

func (t *StageChangesTool) Execute(ctx context.Context, _ any) (string, error) {
	if err := t.repo.StageAll(); err != nil {
		return "", tool.Wrap(tool.KindCommandFailed, err, "")
	}
	entries, err := t.repo.Status()
	if err != nil {
		return "", tool.Wrap(tool.KindCommandFailed, err, "")
	}
	if len(entries) == 0 {
		return NoChanges, nil
	}
	return "Staged changes:\n" + shortStatus(entries), nil
}

// RepoInfoTool names the repository and its root directory.
type RepoInfoTool struct {
	repo repository
	name string
	root string
}

// NewRepoInfoTool creates a RepoInfoTool. An empty name falls back to the
// base name of root.
func NewRepoInfoTool(repo repository, name, root string) *RepoInfoTool {
	if repo == nil {
		panic("repo is required")
	}
	if name == "" {
		name = filepath.Base(root)
	}
	return &RepoInfoTool{repo: repo, name: name, root: root}
}

func (t *RepoInfoTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "get_repo_info",
		Category: tool.CategoryRepository,
		Doc: `Get repository name and root directory information.

Returns:
    String containing repository name and root directory path`,
	}
}

func (t *RepoInfoTool) Request() any { return &noArgs{} }

func (t *RepoInfoTool) Execute(ctx context.Context, _ any) (string, error) {
	out := fmt.Sprintf("Repository: %s\nRoot directory: %s", t.name, t.root)
	head, err := t.repo.Head()
	if err != nil || head.Hash == "" {
		return out, nil
	}
	if head.Branch != "" {
		out += "\nBranch: " + head.Branch
	}
	return out + "\nHEAD: " + shortHash(head.Hash), nil
}

func shortStatus(entries []git.FileStatus) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Short()
	}
	return strings.Join(lines, "\n")
}

func section(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(title + "\n")
	for _, l := range lines {
		b.WriteString("\t" + l + "\n")
	}
}

func statusWord(code byte) string {
	switch code {
	case 'M':
		return "modified"
	case 'A':
		return "new file"
	case 'D':
		return "deleted"
	case 'R':
		return "renamed"
	case 'C':
		return "copied"
	case 'U':
		return "unmerged"
	}
	return string(code)
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
