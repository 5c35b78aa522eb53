package file

import "os"

// fileSystem is the subset of disk operations the file tools need.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error
}

// pathResolver keeps model-supplied paths inside the workspace.
type pathResolver interface {
	Abs(path string) (string, error)
}
