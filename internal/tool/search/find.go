package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/paginationutil"
)

// FindRequest is the decoded argument set of find_files.
type FindRequest struct {
	NamePattern string `mapstructure:"name_pattern"`
	FileType    string `mapstructure:"file_type"`
}

// FindFilesTool lists files or directories whose base name matches a glob.
type FindFilesTool struct {
	fs     fileSystem
	ignore ignoreMatcher
	config *config.Config
	root   string
}

// NewFindFilesTool creates a FindFilesTool rooted at root.
func NewFindFilesTool(fs fileSystem, ignore ignoreMatcher, cfg *config.Config, root string) *FindFilesTool {
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &FindFilesTool{fs: fs, ignore: ignore, config: cfg, root: root}
}

func (t *FindFilesTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "find_files",
		Category: tool.CategoryRepository,
		Params: []tool.Param{
			{Name: "name_pattern", Type: tool.TypeString, Default: `"*"`},
			{Name: "file_type", Type: tool.TypeString, Default: `"f"`},
		},
		Doc: `Find files matching a pattern.

Args:
    name_pattern (str): Filename pattern (e.g., "test_*.py", "*misc.py")
    file_type (str): "f" for files, "d" for directories

Returns:
    List of matching file paths`,
	}
}

func (t *FindFilesTool) Request() any {
	return &FindRequest{NamePattern: "*", FileType: "f"}
}

func (t *FindFilesTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*FindRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	paths, err := t.Find(ctx, r.NamePattern, r.FileType)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "No files found", nil
	}
	shown, page := paginationutil.Limit(paths, t.config.Tools.MaxFindFileResults)
	return strings.Join(shown, "\n") + page.Footer(len(shown)), nil
}

// Find returns "./"-prefixed paths in walk order whose base name matches
// pattern. fileType is "f" or "d".
func (t *FindFilesTool) Find(ctx context.Context, pattern, fileType string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if fileType == "" {
		fileType = "f"
	}
	if fileType != "f" && fileType != "d" {
		return nil, tool.Errorf(tool.KindInvalidArguments, `file_type must be "f" or "d", got %q`, fileType)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, &tool.Error{Kind: tool.KindInvalidArguments, Message: fmt.Sprintf("invalid name_pattern %q: %v", pattern, err), Cause: err}
	}

	var found []string
	err := walkWorkspace(ctx, t.fs, t.ignore, t.root, func(rel, _ string, info os.FileInfo) error {
		if info.IsDir() != (fileType == "d") {
			return nil
		}
		if ok, _ := filepath.Match(pattern, info.Name()); ok {
			found = append(found, "./"+rel)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, tool.Wrap(tool.KindIO, err, "")
	}
	return found, nil
}
