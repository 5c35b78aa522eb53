package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/provider"
	"github.com/Cyclone1070/reactagent/internal/telemetry"
	"github.com/Cyclone1070/reactagent/internal/ui"
	"github.com/Cyclone1070/reactagent/internal/workflow"
	"github.com/Cyclone1070/reactagent/internal/workflow/loop"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type runOptions struct {
	task      string
	taskFile  string
	maxSteps  int
	workspace string
	provider  string
	model     string
	policy    string
	repoName  string
	patch     bool
	noVerify  bool
	quiet     bool
	verbose   bool
}

func runCmd(deps Dependencies, g *globalFlags) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Solve a task in the workspace",
		Long: `Run the agent until it finishes the task or exhausts its step budget.
The final output (or the patch, with --patch) is printed on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAgent(ctx, deps, g, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.task, "task", "", "task description")
	f.StringVar(&opts.taskFile, "task-file", "", "read the task description from a file")
	f.IntVar(&opts.maxSteps, "max-steps", 0, "step budget, clamped to 100 (default from config)")
	f.StringVar(&opts.workspace, "workspace", ".", "repository to work in")
	f.StringVar(&opts.provider, "provider", "", "LLM backend: gemini or openai")
	f.StringVar(&opts.model, "model", "", "model name")
	f.StringVar(&opts.policy, "policy", "", "finish policy: strict, standard or lenient")
	f.StringVar(&opts.repoName, "repo-name", "", "repository name reported by get_repo_info")
	f.BoolVar(&opts.patch, "patch", false, "stage all changes on finish and print the patch")
	f.BoolVar(&opts.noVerify, "no-verify", false, "do not require workspace changes to finish")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the transcript")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print raw model turns")
	cmd.MarkFlagsMutuallyExclusive("task", "task-file")
	return cmd
}

func runAgent(ctx context.Context, deps Dependencies, g *globalFlags, opts runOptions) error {
	task, err := readTask(opts)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(deps, g, opts)
	if err != nil {
		return err
	}
	if err := applyLogging(deps, g, cfg.Logging); err != nil {
		return err
	}
	slog.SetDefault(slog.Default().With("run_id", uuid.NewString()))

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	set, err := createTools(cfg, opts.workspace, opts.repoName)
	if err != nil {
		return err
	}

	llm, closeLLM, err := deps.ProviderFactory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize provider: %w", err)
	}
	defer func() {
		if err := closeLLM(); err != nil {
			slog.Warn("closing provider failed", "error", err)
		}
	}()

	events := make(chan workflow.Event, 16)
	agentOpts := []loop.Option{
		loop.WithEvents(events),
		loop.WithMaxObservationChars(cfg.Tools.MaxObservationChars),
	}
	if set.Repo != nil && cfg.Agent.VerifyChanges {
		agentOpts = append(agentOpts, loop.WithChangeVerifier(set.Repo))
	}
	if opts.patch {
		if set.Patch == nil {
			return errors.New("--patch needs the workspace to be a git repository")
		}
		agentOpts = append(agentOpts, loop.WithFinishHandler(set.Patch.Patch))
	}

	agent, err := loop.New(cfg.Agent, llm, set.Tools, agentOpts...)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if opts.quiet {
			for range events {
			}
			return
		}
		newPrinter(deps, opts.verbose).Consume(context.Background(), events)
	}()

	slog.Info("starting run", "workspace", set.Root, "provider", cfg.Provider.Name, "model", provider.ModelName(llm), "tools", len(set.Tools))
	maxSteps := opts.maxSteps
	if maxSteps <= 0 {
		maxSteps = cfg.Agent.MaxSteps
	}
	res, runErr := agent.Run(ctx, task, maxSteps)
	close(events)
	wg.Wait()
	if runErr != nil {
		return runErr
	}

	slog.Info("run complete", "outcome", res.Outcome, "steps", res.Steps, "llm_calls", res.LLMCalls)
	fmt.Fprintln(deps.Stdout, res.Output)
	return nil
}

func newPrinter(deps Dependencies, verbose bool) *ui.Printer {
	md, err := ui.NewGlamourRenderer(100)
	if err != nil {
		slog.Warn("markdown rendering disabled", "error", err)
		return ui.NewPrinter(deps.Stderr, nil, verbose)
	}
	return ui.NewPrinter(deps.Stderr, md, verbose)
}

func readTask(opts runOptions) (string, error) {
	task := opts.task
	if opts.taskFile != "" {
		data, err := os.ReadFile(opts.taskFile)
		if err != nil {
			return "", fmt.Errorf("read task file: %w", err)
		}
		task = string(data)
	}
	if strings.TrimSpace(task) == "" {
		return "", errors.New("a task is required: use --task or --task-file")
	}
	return task, nil
}

// resolveConfig loads the config file and applies command-line overrides.
func resolveConfig(deps Dependencies, g *globalFlags, opts runOptions) (*config.Config, error) {
	cfg, err := deps.LoadConfig(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.provider != "" {
		cfg.Provider.Name = opts.provider
	}
	if opts.model != "" {
		cfg.Provider.Model = opts.model
	}
	if opts.policy != "" {
		cfg.Agent.FinishPolicy = opts.policy
	}
	if opts.noVerify {
		cfg.Agent.VerifyChanges = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
