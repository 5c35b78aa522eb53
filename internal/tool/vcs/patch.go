package vcs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// PatchGenerator turns the staged workspace into a git patch when the
// agent finishes.
type PatchGenerator struct {
	repo     repository
	fs       fileReader
	resolver pathResolver
}

// NewPatchGenerator creates a PatchGenerator with injected dependencies.
func NewPatchGenerator(repo repository, fs fileReader, resolver pathResolver) *PatchGenerator {
	if repo == nil {
		panic("repo is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	return &PatchGenerator{repo: repo, fs: fs, resolver: resolver}
}

// Patch stages everything and returns the diff of the index against HEAD.
// It has the signature of a finish handler: result is only logged, and any
// failure yields an empty patch so the run still completes.
func (g *PatchGenerator) Patch(ctx context.Context, result string) (string, error) {
	patch, err := g.build(ctx)
	if err != nil {
		slog.Warn("patch generation failed", "error", err)
		return "", nil
	}
	slog.Info("patch generated", "bytes", len(patch), "result", result)
	return patch, nil
}

func (g *PatchGenerator) build(ctx context.Context) (string, error) {
	if err := g.repo.StageAll(); err != nil {
		return "", fmt.Errorf("stage: %w", err)
	}
	entries, err := g.repo.Status()
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}

	var b strings.Builder
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if e.Staging == ' ' || e.Staging == '?' {
			continue
		}
		d, err := fileDiff(g.repo, g.fs, g.resolver, e.Path)
		if err != nil {
			return "", fmt.Errorf("diff %s: %w", e.Path, err)
		}
		b.WriteString(d)
	}

	patch := strings.TrimSpace(b.String())
	if !strings.HasPrefix(patch, "diff --git") {
		return "", nil
	}
	return patch, nil
}
