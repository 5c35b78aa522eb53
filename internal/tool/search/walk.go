package search

import (
	"context"
	"os"
	"path/filepath"
)

// walkWorkspace visits every non-ignored entry under root with its
// slash-separated relative path. Ignored directories are pruned.
func walkWorkspace(ctx context.Context, fsys fileSystem, ignore ignoreMatcher, root string, visit func(rel, abs string, info os.FileInfo) error) error {
	return fsys.WalkDir(root, func(abs string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// unreadable entries are skipped, not fatal
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, abs)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ignore != nil && ignore.ShouldIgnore(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return visit(rel, abs, info)
	})
}
