package testrun

import (
	"context"

	"github.com/Cyclone1070/reactagent/internal/tool/service/executor"
)

type commandExecutor interface {
	Run(ctx context.Context, cmd executor.Command) (*executor.Result, error)
}

type pathResolver interface {
	Abs(path string) (string, error)
	Rel(path string) (string, error)
}

// fileFinder lists workspace files whose base name matches a glob.
type fileFinder interface {
	Find(ctx context.Context, pattern, fileType string) ([]string, error)
}
