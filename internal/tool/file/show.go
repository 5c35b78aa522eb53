package file

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/errutil"
	"github.com/Cyclone1070/reactagent/internal/tool/helper/content"
)

// ShowRequest is the decoded argument set of show_file.
type ShowRequest struct {
	FilePath    string `mapstructure:"file_path"`
	StartLine   int    `mapstructure:"start_line"`
	EndLine     int    `mapstructure:"end_line"`
	LineNumbers bool   `mapstructure:"line_numbers"`
}

// ShowFileTool prints a file, or a line range of it.
type ShowFileTool struct {
	fs       fileSystem
	resolver pathResolver
	config   *config.Config
}

// NewShowFileTool creates a ShowFileTool with injected dependencies.
func NewShowFileTool(fs fileSystem, resolver pathResolver, cfg *config.Config) *ShowFileTool {
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ShowFileTool{fs: fs, resolver: resolver, config: cfg}
}

func (t *ShowFileTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "show_file",
		Category: tool.CategoryFile,
		Params: []tool.Param{
			{Name: "file_path", Type: tool.TypeString, Required: true},
			{Name: "start_line", Type: tool.TypeInteger, Default: "1"},
			{Name: "end_line", Type: tool.TypeInteger},
			{Name: "line_numbers", Type: tool.TypeBoolean, Default: "False"},
		},
		Doc: `Show the content of the file.

Args:
    file_path (str): Path to the file to read
    start_line (int): First line to show (1-indexed)
    end_line (int): Last line to show, inclusive; defaults to the end of the file
    line_numbers (bool): Prefix every line with its number

Returns:
    The contents of the file`,
	}
}

func (t *ShowFileTool) Request() any { return &ShowRequest{StartLine: 1} }

// Execute reads the file and returns the requested lines. Output longer
// than MaxShowFileLines is cut with a note naming the next start line.
func (t *ShowFileTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*ShowRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	if r.FilePath == "" {
		return "", tool.Errorf(tool.KindInvalidArguments, "file_path must not be empty")
	}
	if r.StartLine < 1 {
		return "", tool.Errorf(tool.KindInvalidArguments, "start_line must be >= 1, got %d", r.StartLine)
	}
	if r.EndLine != 0 && r.EndLine < r.StartLine {
		return "", tool.Errorf(tool.KindInvalidArguments, "end_line (%d) must be >= start_line (%d)", r.EndLine, r.StartLine)
	}

	abs, err := t.resolver.Abs(r.FilePath)
	if err != nil {
		return "", errutil.FromFS(err)
	}
	data, err := t.fs.ReadFile(abs)
	if err != nil {
		return "", errutil.FromFS(err)
	}

	lines := content.SplitLines(string(data))
	if r.StartLine > len(lines) && !(r.StartLine == 1 && len(lines) == 0) {
		return "", tool.Errorf(tool.KindInvalidArguments, "start_line (%d) exceeds file length (%d)", r.StartLine, len(lines))
	}

	end := len(lines)
	if r.EndLine != 0 && r.EndLine < end {
		end = r.EndLine
	}
	limit := t.config.Tools.MaxShowFileLines
	truncated := false
	if limit > 0 && end-r.StartLine+1 > limit {
		end = r.StartLine + limit - 1
		truncated = true
	}
	selected := lines[min(r.StartLine-1, len(lines)):end]

	var out string
	if r.LineNumbers {
		out = content.NumberLines(selected, r.StartLine)
	} else if len(selected) > 0 {
		out = strings.Join(selected, "\n") + "\n"
	}
	if truncated {
		out += fmt.Sprintf("[truncated at line %d of %d; call show_file with start_line=%d to continue]\n", end, len(lines), end+1)
	}
	return out, nil
}
