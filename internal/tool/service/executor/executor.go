package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/reactagent/internal/config"
)

// Command describes one process invocation.
type Command struct {
	Argv    []string
	Dir     string
	Env     []string      // nil inherits the current environment
	Timeout time.Duration // 0 uses the configured shell timeout
}

// Result represents the outcome of a command execution. Output holds
// stdout and stderr interleaved in arrival order.
type Result struct {
	Output    string
	ExitCode  int
	Truncated bool
	TimedOut  bool
}

// OSCommandExecutor implements command execution using os/exec for real system commands.
type OSCommandExecutor struct {
	config *config.Config
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{config: cfg}
}

// Run executes a command and waits for it. A non-zero exit status is
// reported through Result.ExitCode, not as an error. On timeout the process
// receives an interrupt, then is killed after the graceful shutdown period;
// the partial output is returned together with ErrTimeout.
func (f *OSCommandExecutor) Run(ctx context.Context, c Command) (*Result, error) {
	if len(c.Argv) == 0 {
		return nil, os.ErrInvalid
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Duration(f.config.Tools.DefaultShellTimeout) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = nil
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = time.Duration(f.config.Tools.GracefulShutdownMs) * time.Millisecond

	out := newCollector(int(f.config.Tools.DefaultMaxCommandOutputSize), 8000)
	// same writer for both streams keeps them interleaved
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: c.Argv[0], Stage: "start", Cause: err}
	}

	waitErr := cmd.Wait()

	res := &Result{
		Output:    out.String(),
		ExitCode:  exitCode(waitErr),
		Truncated: out.Truncated(),
	}

	switch {
	case ctx.Err() != nil:
		return res, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.ExitCode = -1
		return res, ErrTimeout
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return res, &CommandError{Cmd: c.Argv[0], Stage: "wait", Cause: waitErr}
	}
	return res, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
