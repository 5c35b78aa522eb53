package path

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps model-supplied paths onto the workspace and keeps them
// inside it.
type Resolver struct {
	root string
}

// NewResolver creates a resolver for a canonical workspace root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the workspace root.
func (r *Resolver) Root() string {
	return r.root
}

// CanonicaliseRoot makes root absolute, resolves symlinks and checks that
// it is a directory.
func CanonicaliseRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &WorkspaceRootError{Root: root, Cause: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &WorkspaceRootError{Root: abs, Cause: err}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &WorkspaceRootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Abs resolves path against the root and rejects anything outside it.
// When the path exists, symlinks are resolved before the boundary check.
func (r *Resolver) Abs(path string) (string, error) {
	if r.root == "" {
		return "", ErrWorkspaceRootNotSet
	}

	abs := filepath.Clean(path)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.root, abs)
	}
	if !r.within(abs) {
		return "", &OutsideError{Path: path}
	}

	real, err := filepath.EvalSymlinks(abs)
	switch {
	case err == nil:
		if !r.within(real) {
			return "", &OutsideError{Path: path}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}
	return abs, nil
}

// Rel returns path relative to the root with forward slashes. The root
// itself is ".".
func (r *Resolver) Rel(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", &OutsideError{Path: path}
	}
	return filepath.ToSlash(rel), nil
}

func (r *Resolver) within(abs string) bool {
	return abs == r.root || strings.HasPrefix(abs, r.root+string(filepath.Separator))
}
