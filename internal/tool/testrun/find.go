package testrun

import (
	"context"
	"sort"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/tool"
)

// FindTestRequest is the decoded argument set of find_test_file.
type FindTestRequest struct {
	IssueDescription string `mapstructure:"issue_description"`
}

// FindTestFileTool lists pytest files, optionally ranked by keywords from
// an issue description.
type FindTestFileTool struct {
	finder fileFinder
}

// NewFindTestFileTool creates a FindTestFileTool backed by finder.
func NewFindTestFileTool(finder fileFinder) *FindTestFileTool {
	if finder == nil {
		panic("finder is required")
	}
	return &FindTestFileTool{finder: finder}
}

func (t *FindTestFileTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "find_test_file",
		Category: tool.CategoryTesting,
		Params: []tool.Param{
			{Name: "issue_description", Type: tool.TypeString},
		},
		Doc: `Find test files related to the issue.

Args:
    issue_description (str): Optional description to help find relevant tests

Returns:
    List of test files that might be relevant`,
	}
}

func (t *FindTestFileTool) Request() any { return &FindTestRequest{} }

const (
	maxListedTests   = 20
	maxMatchedTests  = 10
	maxIssueKeywords = 3
)

func (t *FindTestFileTool) Execute(ctx context.Context, req any) (string, error) {
	r, ok := req.(*FindTestRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}

	var files []string
	for _, pattern := range []string{"test_*.py", "*_test.py"} {
		found, err := t.finder.Find(ctx, pattern, "f")
		if err != nil {
			return "", err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return "No test files found", nil
	}
	sort.Strings(files)
	if len(files) > maxListedTests {
		files = files[:maxListedTests]
	}

	if keywords := issueKeywords(r.IssueDescription); len(keywords) > 0 {
		var matched []string
		for _, f := range files {
			lower := strings.ToLower(f)
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					matched = append(matched, f)
					break
				}
			}
		}
		if len(matched) > 0 {
			if len(matched) > maxMatchedTests {
				matched = matched[:maxMatchedTests]
			}
			return "Potentially relevant test files:\n" + strings.Join(matched, "\n"), nil
		}
	}
	return "Test files found:\n" + strings.Join(files, "\n"), nil
}

// issueKeywords returns the first few words longer than four characters.
func issueKeywords(desc string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(desc)) {
		if len(w) > 4 {
			out = append(out, w)
			if len(out) == maxIssueKeywords {
				break
			}
		}
	}
	return out
}
