package main

import (
	"fmt"
	"log/slog"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/tool/file"
	"github.com/Cyclone1070/reactagent/internal/tool/search"
	"github.com/Cyclone1070/reactagent/internal/tool/service/executor"
	"github.com/Cyclone1070/reactagent/internal/tool/service/fs"
	"github.com/Cyclone1070/reactagent/internal/tool/service/git"
	"github.com/Cyclone1070/reactagent/internal/tool/service/path"
	"github.com/Cyclone1070/reactagent/internal/tool/shell"
	"github.com/Cyclone1070/reactagent/internal/tool/testrun"
	"github.com/Cyclone1070/reactagent/internal/tool/vcs"
	"github.com/Cyclone1070/reactagent/internal/workflow/toolmanager"
)

// toolset is everything the agent needs from the workspace.
type toolset struct {
	Root  string
	Tools []toolmanager.Tool
	Repo  *git.Repo           // nil when the workspace is not a git repository
	Patch *vcs.PatchGenerator // nil without Repo
}

// createTools wires the tool set for the workspace at root.
func createTools(cfg *config.Config, root, repoName string) (*toolset, error) {
	canonicalRoot, err := path.CanonicaliseRoot(root)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize workspace root: %w", err)
	}

	osFS := fs.NewOSFileSystem(cfg.Tools.MaxFileSize)
	resolver := path.NewResolver(canonicalRoot)
	commandExecutor := executor.NewOSCommandExecutor(cfg)

	ignore, err := git.NewIgnoreMatcher(canonicalRoot, osFS)
	if err != nil {
		slog.Warn("gitignore not loaded, searching everything", "error", err)
		ignore = nil
	}

	findFiles := search.NewFindFilesTool(osFS, ignore, cfg, canonicalRoot)
	set := &toolset{
		Root: canonicalRoot,
		Tools: []toolmanager.Tool{
			shell.NewBashTool(commandExecutor, cfg, canonicalRoot),
			file.NewShowFileTool(osFS, resolver, cfg),
			file.NewReplaceInFileTool(osFS, resolver, cfg),
			search.NewGrepTool(osFS, ignore, cfg, canonicalRoot),
			findFiles,
			testrun.NewRunTestTool(commandExecutor, resolver, cfg, canonicalRoot),
			testrun.NewCheckSyntaxTool(commandExecutor, resolver, cfg, canonicalRoot),
			testrun.AnalyzeFailureTool{},
			testrun.NewFindTestFileTool(findFiles),
		},
	}

	repo, err := git.Open(canonicalRoot)
	if err != nil {
		slog.Warn("git tools disabled", "error", err)
		return set, nil
	}
	set.Repo = repo
	set.Patch = vcs.NewPatchGenerator(repo, osFS, resolver)
	set.Tools = append(set.Tools,
		vcs.NewShowDiffTool(repo, osFS, resolver),
		vcs.NewVerifyChangesTool(repo),
		vcs.NewGitStatusTool(repo),
		vcs.NewStageChangesTool(repo),
		vcs.NewRepoInfoTool(repo, repoName, canonicalRoot),
	)
	return set, nil
}
