package guard

import (
	"path"
	"strings"

	"github.com/mattn/go-shellwords"
)

// testRunnerPhrases mark a shell command as a test run.
var testRunnerPhrases = []string{"pytest", "python -m unittest", "python3 -m unittest", "make test"}

// IsTestCommand reports whether a shell command looks like a test run.
// The check is a heuristic: it matches known runner invocations, or any
// argument that looks like a test path (test_*.py, *_test.py, tests/...,
// .../test/...).
func IsTestCommand(cmd string) bool {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return false
	}
	normalized := strings.Join(strings.Fields(cmd), " ")
	for _, phrase := range testRunnerPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}

	words, err := shellwords.Parse(cmd)
	if err != nil {
		words = strings.Fields(cmd)
	}
	for _, w := range words {
		if isTestPath(w) {
			return true
		}
	}
	return false
}

func isTestPath(word string) bool {
	// drop pytest node ids
	word, _, _ = strings.Cut(word, "::")
	base := path.Base(word)
	if strings.HasSuffix(base, ".py") && (strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")) {
		return true
	}
	return strings.HasPrefix(word, "tests/") || strings.HasPrefix(word, "test/") ||
		strings.Contains(word, "/tests/") || strings.Contains(word, "/test/")
}
