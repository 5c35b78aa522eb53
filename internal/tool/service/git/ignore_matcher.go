package git

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/tool/helper/content"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// GitignoreReadError is returned when .gitignore cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

// fileSystem is the read access the matcher needs.
type fileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// alwaysIgnored is skipped regardless of .gitignore.
var alwaysIgnored = []string{".git"}

// IgnoreMatcher matches workspace-relative paths against the root
// .gitignore using go-git's matcher.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads .gitignore from the workspace root. A missing
// file yields a matcher that only skips .git.
func NewIgnoreMatcher(workspaceRoot string, fsys fileSystem) (*IgnoreMatcher, error) {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	if fsys == nil {
		panic("fs is required")
	}

	patterns := make([]gitignore.Pattern, 0, len(alwaysIgnored))
	for _, p := range alwaysIgnored {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	gitignorePath := filepath.Join(workspaceRoot, ".gitignore")
	data, err := fsys.ReadFile(gitignorePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, &GitignoreReadError{Path: gitignorePath, Cause: err}
	default:
		for _, line := range content.SplitLines(string(data)) {
			line = strings.TrimRight(line, " \t")
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
		}
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether a workspace-relative path is ignored.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments, dropping empty and "." parts.
func splitPath(path string) []string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
