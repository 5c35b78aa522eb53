// Package errutil maps filesystem and workspace errors onto tagged tool
// errors.
package errutil

import (
	"context"
	"errors"
	iofs "io/fs"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/service/fs"
	"github.com/Cyclone1070/reactagent/internal/tool/service/path"
)

// FromFS tags err with the kind that best describes it. Context errors and
// errors that are already tagged pass through unchanged.
func FromFS(err error) error {
	if err == nil {
		return nil
	}
	var te *tool.Error
	if errors.As(err, &te) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, path.ErrOutsideWorkspace):
		return tool.Wrap(tool.KindOutsideWorkspace, err, "Use a path inside the repository.")
	case errors.Is(err, iofs.ErrNotExist):
		return tool.Wrap(tool.KindNotFound, err, "Use find_files to locate the file.")
	case errors.Is(err, fs.ErrIsDir):
		return tool.Wrap(tool.KindInvalidArguments, err, "Use find_files to list a directory.")
	case errors.Is(err, fs.ErrBinary), errors.Is(err, fs.ErrTooLarge):
		return tool.Wrap(tool.KindInvalidArguments, err, "")
	default:
		return tool.Wrap(tool.KindIO, err, "")
	}
}
