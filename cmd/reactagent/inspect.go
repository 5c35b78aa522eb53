package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Cyclone1070/reactagent/internal/provider"
	"github.com/Cyclone1070/reactagent/internal/workflow/loop"
	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
	"github.com/spf13/cobra"
)

// offlineProvider lets the agent be built for inspection without a backend.
type offlineProvider struct{}

func (offlineProvider) Generate(context.Context, []provider.Message) (string, error) {
	return "", errors.New("offline provider cannot generate")
}

func toolsCmd(deps Dependencies, g *globalFlags) *cobra.Command {
	var (
		workspace string
		prompt    bool
	)
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalogue shown to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := deps.LoadConfig(g.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			set, err := createTools(cfg, workspace, "")
			if err != nil {
				return err
			}
			agent, err := loop.New(cfg.Agent, offlineProvider{}, set.Tools)
			if err != nil {
				return err
			}
			if prompt {
				fmt.Fprintln(deps.Stdout, agent.SystemPrompt())
				return nil
			}
			fmt.Fprintln(deps.Stdout, agent.Tools().Catalogue())
			return nil
		},
	}
	cmd.Flags().StringVar(&workspace, "workspace", ".", "repository the tools operate on")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "print the full system prompt")
	return cmd
}

type parsedCallJSON struct {
	Thought string            `json:"thought"`
	Name    string            `json:"name"`
	Args    map[string]string `json:"args"`
}

func parseCmd(deps Dependencies) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a model response and print the call it contains as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data []byte
				err  error
			)
			if file != "" {
				data, err = os.ReadFile(file)
			} else {
				data, err = io.ReadAll(deps.Stdin)
			}
			if err != nil {
				return err
			}
			call, err := protocol.Parse(string(data))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(deps.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(parsedCallJSON{
				Thought: call.Thought,
				Name:    call.Name,
				Args:    call.Arguments.Map(),
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the response from a file instead of stdin")
	return cmd
}
