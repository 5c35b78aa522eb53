package search

import "path/filepath"

// fileSystem walks the workspace and reads text files.
type fileSystem interface {
	ReadFile(path string) ([]byte, error)
	WalkDir(root string, fn filepath.WalkFunc) error
}

// ignoreMatcher decides which workspace-relative paths are skipped.
type ignoreMatcher interface {
	ShouldIgnore(rel string, isDir bool) bool
}
