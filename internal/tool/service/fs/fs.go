package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/reactagent/internal/tool/helper/content"
)

// OSFileSystem implements filesystem operations on the local disk.
type OSFileSystem struct {
	maxFileSize int64
}

// NewOSFileSystem creates a filesystem that refuses to read files larger
// than maxFileSize bytes. maxFileSize <= 0 disables the limit.
func NewOSFileSystem(maxFileSize int64) *OSFileSystem {
	return &OSFileSystem{maxFileSize: maxFileSize}
}

// Stat returns file info for a path (follows symlinks).
func (fs *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads a whole text file. Directories, files over the size limit
// and binary files are rejected.
func (fs *OSFileSystem) ReadFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDir, path)
	}
	if fs.maxFileSize > 0 && info.Size() > fs.maxFileSize {
		return nil, &SizeError{Path: path, Size: info.Size(), Limit: fs.maxFileSize}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if content.IsBinaryContent(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinary, path)
	}
	return data, nil
}

// WriteFileAtomic writes content via a temp file in the same directory and
// a rename, so a crash never leaves a half-written target. An existing
// target keeps its permissions; new files get perm.
func (fs *OSFileSystem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &AtomicWriteError{Path: path, Stage: "create temp", Cause: err}
	}
	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return &AtomicWriteError{Path: path, Stage: "write", Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &AtomicWriteError{Path: path, Stage: "sync", Cause: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &AtomicWriteError{Path: path, Stage: "close", Cause: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return &AtomicWriteError{Path: path, Stage: "chmod", Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &AtomicWriteError{Path: path, Stage: "rename", Cause: err}
	}
	committed = true
	return nil
}

// WalkDir walks the tree rooted at root.
func (fs *OSFileSystem) WalkDir(root string, fn filepath.WalkFunc) error {
	return filepath.Walk(root, fn)
}
