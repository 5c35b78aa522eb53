package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/provider"
	"github.com/Cyclone1070/reactagent/internal/provider/calllog"
	"github.com/Cyclone1070/reactagent/internal/provider/gemini"
	"github.com/Cyclone1070/reactagent/internal/provider/openai"
	"github.com/Cyclone1070/reactagent/internal/provider/retry"
	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
)

// Dependencies holds the components the commands need from the outside
// world, so tests can replace them.
type Dependencies struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LoadConfig loads the config file; an empty path means the dotfile.
	LoadConfig func(path string) (*config.Config, error)

	// ProviderFactory builds the LLM client. The returned close function
	// is called once the run ends.
	ProviderFactory func(ctx context.Context, cfg *config.Config) (provider.Provider, func() error, error)
}

func defaultDependencies() Dependencies {
	return Dependencies{
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		LoadConfig:      loadConfig,
		ProviderFactory: createProvider,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.NewLoader().LoadFile(path)
}

// createProvider builds the configured backend and wraps it with retries
// and, when a directory is configured, the JSONL call log.
func createProvider(ctx context.Context, cfg *config.Config) (provider.Provider, func() error, error) {
	var (
		p   provider.Provider
		err error
	)
	switch cfg.Provider.Name {
	case "gemini":
		p, err = gemini.NewFromEnv(ctx, cfg.Provider.Model, protocol.EndCall, cfg.Provider.MaxOutputTokens)
	case "openai":
		p, err = openai.New(openai.Options{
			Model:     cfg.Provider.Model,
			MaxTokens: cfg.Provider.MaxOutputTokens,
		}, protocol.EndCall)
	default:
		err = fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
	if err != nil {
		return nil, nil, err
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.Provider.MaxRetries
	policy.BaseDelay = time.Duration(cfg.Provider.RetryBaseDelayMs) * time.Millisecond
	policy.MaxDelay = time.Duration(cfg.Provider.RetryMaxDelayMs) * time.Millisecond
	p = retry.New(p, policy, cfg.Provider.RequestsPerMinute)

	noop := func() error { return nil }
	if cfg.Provider.CallLogDir == "" {
		return p, noop, nil
	}
	model := provider.ModelName(p)
	logged, err := calllog.Open(p, cfg.Provider.CallLogDir, calllog.NewTokenCounter(model))
	if err != nil {
		return nil, nil, err
	}
	slog.Info("logging LLM calls", "dir", cfg.Provider.CallLogDir, "model", model)
	return logged, logged.Close, nil
}
