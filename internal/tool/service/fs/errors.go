package fs

import (
	"errors"
	"fmt"
)

var (
	ErrTooLarge = errors.New("file exceeds size limit")
	ErrBinary   = errors.New("binary file")
	ErrIsDir    = errors.New("path is a directory")
)

// AtomicWriteError reports the failing stage of WriteFileAtomic.
type AtomicWriteError struct {
	Path  string
	Stage string // "create temp", "write", "sync", "close", "rename", "chmod"
	Cause error
}

func (e *AtomicWriteError) Error() string {
	return fmt.Sprintf("atomic write of %s failed at %s: %v", e.Path, e.Stage, e.Cause)
}
func (e *AtomicWriteError) Unwrap() error { return e.Cause }

// SizeError carries the size that exceeded the limit.
type SizeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s is %d bytes, limit is %d", e.Path, e.Size, e.Limit)
}
func (e *SizeError) Unwrap() error { return ErrTooLarge }
