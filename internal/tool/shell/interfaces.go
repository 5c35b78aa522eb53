package shell

import (
	"context"

	"github.com/Cyclone1070/reactagent/internal/tool/service/executor"
)

// commandExecutor runs a process and collects its combined output.
type commandExecutor interface {
	Run(ctx context.Context, cmd executor.Command) (*executor.Result, error)
}
