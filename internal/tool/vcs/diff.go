package vcs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/errutil"
	"github.com/Cyclone1070/reactagent/internal/tool/helper/content"
	"github.com/Cyclone1070/reactagent/internal/tool/service/fs"
	"github.com/pmezard/go-difflib/difflib"
)

// NoFileChanges is reported by show_diff when the file matches HEAD.
const NoFileChanges = "No changes detected (file may not be tracked or no changes made)"

// ShowDiffRequest is the decoded argument set of show_diff.
type ShowDiffRequest struct {
	FilePath string `mapstructure:"file_path"`
}

// ShowDiffTool diffs a worktree file against its HEAD version.
type ShowDiffTool struct {
	repo     repository
	fs       fileReader
	resolver pathResolver
}

// NewShowDiffTool creates a ShowDiffTool with injected dependencies.
func NewShowDiffTool(repo repository, fs fileReader, resolver pathResolver) *ShowDiffTool {
	if repo == nil {
		panic("repo is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	return &ShowDiffTool{repo: repo, fs: fs, resolver: resolver}
}

func (t *ShowDiffTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "show_diff",
		Category: tool.CategoryGit,
		Params: []tool.Param{
			{Name: "file_path", Type: tool.TypeString, Required: true},
		},
		Doc: `Show the git diff for a file to see what has changed.

Args:
    file_path (str): Path to the file

Returns:
    Git diff output showing changes`,
	}
}

func (t *ShowDiffTool) Request() any { return &ShowDiffRequest{} }

func (t *ShowDiffTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*ShowDiffRequest)
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

	d, err := fileDiff(t.repo, t.fs, t.resolver, rel)
	if err != nil {
		return "", err
	}
	if d == "" {
		return NoFileChanges, nil
	}
	return d, nil
}

// fileDiff renders a git-style patch for one workspace-relative file,
// comparing HEAD with the worktree. Unchanged files produce "".
func fileDiff(repo repository, fsys fileReader, resolver pathResolver, rel string) (string, error) {
	before, inHead, err := repo.HeadContent(rel)
	if err != nil {
		return "", tool.Wrap(tool.KindCommandFailed, err, "")
	}

	abs, err := resolver.Abs(rel)
	if err != nil {
		return "", errutil.FromFS(err)
	}
	data, err := fsys.ReadFile(abs)
	onDisk := true
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		onDisk = false
	case errors.Is(err, fs.ErrBinary):
		if !inHead {
			return fmt.Sprintf("diff --git a/%[1]s b/%[1]s\nnew file mode 100644\nBinary files /dev/null and b/%[1]s differ\n", rel), nil
		}
		return fmt.Sprintf("diff --git a/%[1]s b/%[1]s\nBinary files a/%[1]s and b/%[1]s differ\n", rel), nil
	case err != nil:
		return "", errutil.FromFS(err)
	}
	after := string(data)

	if !inHead && !onDisk {
		return "", nil
	}
	if inHead && onDisk && before == after {
		return "", nil
	}

	var header strings.Builder
	fmt.Fprintf(&header, "diff --git a/%[1]s b/%[1]s\n", rel)
	from, to := "a/"+rel, "b/"+rel
	switch {
	case !inHead:
		header.WriteString("new file mode 100644\n")
		from = "/dev/null"
	case !onDisk:
		header.WriteString("deleted file mode 100644\n")
		to = "/dev/null"
	}

	body, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(before),
		B:        diffLines(after),
		FromFile: from,
		ToFile:   to,
		Context:  3,
	})
	if err != nil {
		return "", tool.Wrap(tool.KindInternal, err, "")
	}
	if body == "" {
		// content equal up to a trailing newline
		return "", nil
	}
	return header.String() + body, nil
}

// diffLines splits for difflib. A missing final newline is added so the
// last line compares equal to its terminated form.
func diffLines(s string) []string {
	lines := content.SplitKeepEnds(s)
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += "\n"
	}
	return lines
}
