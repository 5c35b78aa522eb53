package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/helper/content"
	"github.com/Cyclone1070/reactagent/internal/tool/paginationutil"
)

// GrepRequest is the decoded argument set of grep.
type GrepRequest struct {
	Pattern       string `mapstructure:"pattern"`
	FilePattern   string `mapstructure:"file_pattern"`
	CaseSensitive bool   `mapstructure:"case_sensitive"`
}

// GrepTool searches file contents with a regular expression.
type GrepTool struct {
	fs     fileSystem
	ignore ignoreMatcher
	config *config.Config
	root   string
}

// NewGrepTool creates a GrepTool that searches below root. ignore may be
// nil to search everything.
func NewGrepTool(fs fileSystem, ignore ignoreMatcher, cfg *config.Config, root string) *GrepTool {
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &GrepTool{fs: fs, ignore: ignore, config: cfg, root: root}
}

func (t *GrepTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "grep",
		Category: tool.CategoryRepository,
		Params: []tool.Param{
			{Name: "pattern", Type: tool.TypeString, Required: true},
			{Name: "file_pattern", Type: tool.TypeString, Default: `"*"`},
			{Name: "case_sensitive", Type: tool.TypeBoolean, Default: "True"},
		},
		Doc: `Search for a pattern in files.

Args:
    pattern (str): The pattern to search for (regex)
    file_pattern (str): File pattern to search in (e.g., "*.py", "test_*.py")
    case_sensitive (bool): Whether search is case-sensitive

Returns:
    Matching lines with file names and line numbers`,
	}
}

func (t *GrepTool) Request() any {
	return &GrepRequest{FilePattern: "*", CaseSensitive: true}
}

// Execute walks the workspace and prints "./path:line:text" for each
// matching line, sorted by path then line.
func (t *GrepTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*GrepRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	if r.Pattern == "" {
		return "", tool.Errorf(tool.KindInvalidArguments, "pattern must not be empty")
	}
	expr := r.Pattern
	if !r.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return "", &tool.Error{Kind: tool.KindInvalidArguments, Message: fmt.Sprintf("invalid pattern %q: %v", r.Pattern, err), Cause: err}
	}
	filePattern := r.FilePattern
	if filePattern == "" {
		filePattern = "*"
	}
	if _, err := filepath.Match(filePattern, ""); err != nil {
		return "", &tool.Error{Kind: tool.KindInvalidArguments, Message: fmt.Sprintf("invalid file_pattern %q: %v", filePattern, err), Cause: err}
	}

	maxLine := t.config.Tools.MaxLineLength
	var hits []string
	err = walkWorkspace(ctx, t.fs, t.ignore, t.root, func(rel, abs string, info os.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(filePattern, info.Name()); !ok {
			return nil
		}
		data, err := t.fs.ReadFile(abs)
		if err != nil {
			// binary and oversized files are skipped like grep -I
			return nil
		}
		for i, line := range content.SplitLines(string(data)) {
			if !re.MatchString(line) {
				continue
			}
			if maxLine > 0 && len(line) > maxLine {
				line = line[:maxLine] + "...[truncated]"
			}
			hits = append(hits, fmt.Sprintf("./%s:%d:%s", rel, i+1, line))
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", tool.Wrap(tool.KindIO, err, "")
	}

	if len(hits) == 0 {
		return "No matches found", nil
	}
	shown, page := paginationutil.Limit(hits, t.config.Tools.MaxSearchResults)
	return strings.Join(shown, "\n") + page.Footer(len(shown)), nil
}
