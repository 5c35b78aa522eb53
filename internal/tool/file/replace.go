package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/errutil"
	"github.com/Cyclone1070/reactagent/internal/tool/helper/content"
)

// ReplaceToolName is the name of the line-range edit tool.
const ReplaceToolName = "replace_in_file"

// ReplaceRequest is the decoded argument set of replace_in_file.
type ReplaceRequest struct {
	FilePath string `mapstructure:"file_path"`
	FromLine int    `mapstructure:"from_line"`
	ToLine   int    `mapstructure:"to_line"`
	Content  string `mapstructure:"content"`
}

// ReplaceInFileTool replaces an inclusive 1-indexed line range.
type ReplaceInFileTool struct {
	fs       fileSystem
	resolver pathResolver
	config   *config.Config
}

// NewReplaceInFileTool creates a ReplaceInFileTool with injected dependencies.
func NewReplaceInFileTool(fs fileSystem, resolver pathResolver, cfg *config.Config) *ReplaceInFileTool {
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ReplaceInFileTool{fs: fs, resolver: resolver, config: cfg}
}

func (t *ReplaceInFileTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     ReplaceToolName,
		Category: tool.CategoryFile,
		Params: []tool.Param{
			{Name: "file_path", Type: tool.TypeString, Required: true},
			{Name: "from_line", Type: tool.TypeInteger, Required: true},
			{Name: "to_line", Type: tool.TypeInteger, Required: true},
			{Name: "content", Type: tool.TypeString, Required: true},
		},
		Doc: `Replace lines in a file from from_line to to_line (inclusive, 1-indexed) with the given content.

Args:
    file_path (str): Path to the file to modify
    from_line (int): Starting line number (1-indexed, inclusive)
    to_line (int): Ending line number (1-indexed, inclusive)
    content (str): New content to replace the lines with (can be multiline)

Returns:
    Confirmation message with the number of lines replaced`,
	}
}

func (t *ReplaceInFileTool) Request() any { return &ReplaceRequest{} }

// Execute splices content into the file and writes it atomically. The
// replacement always ends with a newline. CRLF files stay CRLF.
func (t *ReplaceInFileTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*ReplaceRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	if r.FilePath == "" {
		return "", tool.Errorf(tool.KindInvalidArguments, "file_path must not be empty")
	}
	if r.FromLine < 1 || r.ToLine < 1 {
		return "", tool.Errorf(tool.KindInvalidArguments, "line numbers must be >= 1")
	}
	if r.ToLine < r.FromLine {
		return "", tool.Errorf(tool.KindInvalidArguments, "to_line must be >= from_line")
	}

	abs, err := t.resolver.Abs(r.FilePath)
	if err != nil {
		return "", errutil.FromFS(err)
	}
	info, err := t.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &tool.Error{Kind: tool.KindNotFound, Message: fmt.Sprintf("File %s does not exist", r.FilePath), Cause: err}
		}
		return "", errutil.FromFS(err)
	}
	data, err := t.fs.ReadFile(abs)
	if err != nil {
		return "", errutil.FromFS(err)
	}

	raw := string(data)
	crlf := strings.Contains(raw, "\r\n")
	lines := content.SplitKeepEnds(strings.ReplaceAll(raw, "\r\n", "\n"))
	if r.FromLine > len(lines)+1 {
		return "", tool.Errorf(tool.KindInvalidArguments, "from_line (%d) exceeds file length (%d)", r.FromLine, len(lines))
	}

	replacement := content.SplitKeepEnds(strings.ReplaceAll(r.Content, "\r\n", "\n"))
	if len(replacement) == 0 {
		replacement = []string{""}
	}
	if last := len(replacement) - 1; !strings.HasSuffix(replacement[last], "\n") {
		replacement[last] += "\n"
	}

	to := min(r.ToLine, len(lines))
	spliced := make([]string, 0, len(lines)+len(replacement))
	spliced = append(spliced, lines[:r.FromLine-1]...)
	spliced = append(spliced, replacement...)
	spliced = append(spliced, lines[to:]...)

	out := strings.Join(spliced, "")
	if crlf {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	if limit := t.config.Tools.MaxFileSize; limit > 0 && int64(len(out)) > limit {
		return "", tool.Errorf(tool.KindInvalidArguments, "file too large after edit: %s (size %d, limit %d)", r.FilePath, len(out), limit)
	}

	if err := t.fs.WriteFileAtomic(abs, []byte(out), info.Mode().Perm()); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errutil.FromFS(err)
	}

	return fmt.Sprintf("Successfully replaced lines %d to %d (%d lines) in %s",
		r.FromLine, r.ToLine, r.ToLine-r.FromLine+1, r.FilePath), nil
}
