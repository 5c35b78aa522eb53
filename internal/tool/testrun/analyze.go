package testrun

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/tool"
)

// AnalyzeRequest is the decoded argument set of analyze_test_failure.
type AnalyzeRequest struct {
	TestOutput string `mapstructure:"test_output"`
}

// AnalyzeFailureTool extracts the interesting lines of a pytest run.
type AnalyzeFailureTool struct{}

func (AnalyzeFailureTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:     "analyze_test_failure",
		Category: tool.CategoryTesting,
		Params: []tool.Param{
			{Name: "test_output", Type: tool.TypeString, Required: true},
		},
		Doc: `Analyze test failure output to extract key information.

Args:
    test_output (str): The output from a failed test run

Returns:
    Analysis of the failure including error type, message, and location`,
	}
}

func (AnalyzeFailureTool) Request() any { return &AnalyzeRequest{} }

func (AnalyzeFailureTool) Execute(_ context.Context, req any) (string, error) {
	r, ok := req.(*AnalyzeRequest)
	if !ok {
		return "", tool.Errorf(tool.KindInternal, "invalid request type %T", req)
	}
	return AnalyzeFailure(r.TestOutput), nil
}

var errorTypes = []string{"AssertionError", "ValueError", "TypeError", "AttributeError"}

// AnalyzeFailure classifies each line of test output. When no line is
// recognised it falls back to keyword lines from the last 20 lines, then
// to the last 500 bytes.
func AnalyzeFailure(output string) string {
	lines := strings.Split(output, "\n")

	var analysis []string
	sawLocation := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(line, "FAILED") || strings.Contains(line, "ERROR"):
			analysis = append(analysis, "Test Status: "+trimmed)
		case containsAny(line, errorTypes):
			analysis = append(analysis, "Error Type: "+trimmed)
		case strings.Contains(line, "def test_") && !sawLocation:
			analysis = append(analysis, "Test Function: "+trimmed)
		case strings.Contains(line, ".py:") && strings.Contains(line, "test_"):
			sawLocation = true
			analysis = append(analysis, "File Location: "+trimmed)
		case strings.Contains(lower, "assert") && strings.Contains(lower, "failed"):
			analysis = append(analysis, "Assertion: "+trimmed)
		case strings.HasPrefix(trimmed, "E ") && len(trimmed) > 2:
			analysis = append(analysis, "Error Message: "+strings.TrimSpace(trimmed[2:]))
		}
	}
	if len(analysis) > 0 {
		return strings.Join(analysis, "\n")
	}

	keywords := append([]string{"FAILED", "ERROR", "assert"}, errorTypes...)
	var key []string
	for _, line := range lines[max(0, len(lines)-20):] {
		if containsAny(line, keywords) {
			key = append(key, strings.TrimSpace(line))
		}
	}
	if len(key) > 0 {
		return "Key failure information:\n" + strings.Join(key, "\n")
	}
	return fmt.Sprintf("Could not extract failure details. Full output:\n%s", output[max(0, len(output)-500):])
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
